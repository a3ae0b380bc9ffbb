// Package mcp provides an MCP (Model Context Protocol) server adapter for fragmenter.
// It lets AI assistants retrieve chunks from the local index and ask questions over it.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
