// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ingest a PDF and ask grounded questions about it.
package mcp

import "errors"

// ErrMissingSession is returned when the session is not provided.
var ErrMissingSession = errors.New("mcp: session is required")
