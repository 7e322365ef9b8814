// Package migrations holds the schema of the SQLite chunk index.
package migrations

import "embed"

// FS holds the numbered up/down migrations, applied in name order.
//
//go:embed *.sql
var FS embed.FS
