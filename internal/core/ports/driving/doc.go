// Package driving defines the primary ports: interfaces the core
// exposes to external actors (CLI, MCP server).
package driving
