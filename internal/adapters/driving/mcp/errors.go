// Package mcp provides an MCP (Model Context Protocol) server adapter for
// CrimeRadar. It lets AI assistants query local crime events and statistics.
package mcp

import "errors"

// ErrMissingEventService is returned when the event service is not provided.
var ErrMissingEventService = errors.New("mcp: event service is required")
