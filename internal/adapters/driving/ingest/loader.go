// Package ingest loads crime events into the store from JSON files,
// either one-shot or by watching a directory for new files.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

// LoadFile reads crime events from a JSON file and ingests them.
// The file may contain either a JSON array of events or a single
// event object. Returns the number of events stored.
func LoadFile(ctx context.Context, service driving.EventService, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	events, err := decodeEvents(data)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	n, err := service.Ingest(ctx, events)
	if err != nil {
		return n, fmt.Errorf("ingesting %s: %w", path, err)
	}
	return n, nil
}

// decodeEvents parses a JSON array of events, falling back to a
// single event object.
func decodeEvents(data []byte) ([]domain.CrimeEvent, error) {
	var events []domain.CrimeEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	var single domain.CrimeEvent
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("%w: expected an event object or array", domain.ErrInvalidInput)
	}
	return []domain.CrimeEvent{single}, nil
}
