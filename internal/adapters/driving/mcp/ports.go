package mcp

import (
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Events provides crime-event queries.
	Events driving.EventService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Events == nil {
		return ErrMissingEventService
	}
	return nil
}
