// Package connectors holds adapters that observe where documents come from.
// The filesystem connector watches an ingested PDF so it can be re-ingested
// when it changes on disk.
package connectors
