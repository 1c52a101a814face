package driven

import (
	"context"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

// EventStore persists and queries crime events.
type EventStore interface {
	// SaveEvent stores or updates a crime event.
	SaveEvent(ctx context.Context, event *domain.CrimeEvent) error

	// GetEvent retrieves an event by ID.
	// Returns domain.ErrNotFound if the event does not exist.
	GetEvent(ctx context.Context, id string) (*domain.CrimeEvent, error)

	// DeleteEvent removes an event by ID.
	DeleteEvent(ctx context.Context, id string) error

	// SearchEvents returns events matching a normalized search query,
	// ordered by update time descending, at most query.Limit results.
	SearchEvents(ctx context.Context, query domain.SearchQuery) ([]domain.CrimeEvent, error)

	// AggregateStats computes statistics for a normalized stats query.
	AggregateStats(ctx context.Context, query domain.StatsQuery) (domain.CrimeStats, error)

	// CountEvents returns the total number of stored events.
	CountEvents(ctx context.Context) (int, error)
}
