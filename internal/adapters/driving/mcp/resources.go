package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for CrimeRadar resources.
	uriScheme = "crimeradar://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the store summary.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "events",
		Name:        "events",
		Description: "Summary of the stored crime events",
		MIMEType:    "application/json",
	}, s.handleEventsResource)

	// Template for individual events.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "events/{eventId}",
		Name:        "event",
		Description: "A single crime event by ID",
		MIMEType:    "application/json",
	}, s.handleEventResource)
}

// handleEventsResource returns a summary of the event store.
func (s *Server) handleEventsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	count, err := s.ports.Events.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	summary := struct {
		TotalEvents int `json:"total_events"`
	}{TotalEvents: count}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling summary: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEventResource returns a specific crime event.
func (s *Server) handleEventResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract eventId from URI: crimeradar://events/{eventId}
	eventID := extractEventID(req.Params.URI)
	if eventID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	event, err := s.ports.Events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting event: %w", err)
	}

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling event: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEventID extracts the event ID from a URI like crimeradar://events/{eventId}.
func extractEventID(uri string) string {
	const prefix = uriScheme + "events/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
