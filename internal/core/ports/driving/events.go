package driving

import (
	"context"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

// SearchResult is the outcome of a search request, carrying the
// canonical query that was executed alongside the matched events.
type SearchResult struct {
	// Query is the normalized query after defaults and clamps.
	Query domain.SearchQuery

	// Events are the matched events, most recently updated first.
	Events []domain.CrimeEvent

	// Count is the number of matched events.
	Count int
}

// StatsResult is the outcome of a statistics request.
type StatsResult struct {
	// Query is the normalized query after defaults.
	Query domain.StatsQuery

	// Stats are the computed statistics.
	Stats domain.CrimeStats
}

// EventService exposes crime-event queries to external actors.
type EventService interface {
	// Search normalizes raw inputs and returns matching events.
	Search(ctx context.Context, raw domain.RawSearchQuery) (*SearchResult, error)

	// Stats normalizes raw inputs and returns event statistics.
	Stats(ctx context.Context, raw domain.RawStatsQuery) (*StatsResult, error)

	// Get retrieves a single event by ID.
	Get(ctx context.Context, id string) (*domain.CrimeEvent, error)

	// Ingest stores a batch of events, assigning IDs where absent.
	// Returns the number of events stored.
	Ingest(ctx context.Context, events []domain.CrimeEvent) (int, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int, error)
}
