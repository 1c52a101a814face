package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driven"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
	"github.com/crimeradar/crimeradar-cli/internal/logger"
)

// Ensure EventService implements the interface.
var _ driving.EventService = (*EventService)(nil)

// EventService provides crime-event search, statistics, and ingestion.
type EventService struct {
	store   driven.EventStore
	limiter *rate.Limiter
	now     func() time.Time
}

// NewEventService creates a new event service backed by the given store.
func NewEventService(store driven.EventStore) *EventService {
	return &EventService{
		store: store,
		now:   time.Now,
	}
}

// SetRateLimit enables proactive throttling of query operations.
// A non-positive rps disables the limiter.
func (s *EventService) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetClock overrides the time source. Used by tests to pin the
// search window.
func (s *EventService) SetClock(now func() time.Time) {
	s.now = now
}

// Search normalizes raw inputs and returns matching events,
// most recently updated first.
func (s *EventService) Search(
	ctx context.Context, raw domain.RawSearchQuery,
) (*driving.SearchResult, error) {
	logger.Section("Event Search")

	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	query, err := domain.NormalizeSearchQuery(raw)
	if err != nil {
		logger.Debug("Query rejected: %v", err)
		return nil, err
	}

	logger.Debug("Query: zipcodes=%v city_pid=%q geo=%v hours_back=%d limit=%d category=%q risk=%q",
		query.Zipcodes, query.CityPID, query.Geo, query.HoursBack, query.Limit, query.Category, query.Risk)

	events, err := s.store.SearchEvents(ctx, query)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("searching events: %w", err)
	}

	logger.Info("Search results: %d", len(events))

	return &driving.SearchResult{
		Query:  query,
		Events: events,
		Count:  len(events),
	}, nil
}

// Stats normalizes raw inputs and returns event statistics for the
// requested location and time window.
func (s *EventService) Stats(
	ctx context.Context, raw domain.RawStatsQuery,
) (*driving.StatsResult, error) {
	logger.Section("Event Statistics")

	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	query, err := domain.NormalizeStatsQuery(raw)
	if err != nil {
		logger.Debug("Query rejected: %v", err)
		return nil, err
	}

	logger.Debug("Query: zipcodes=%v city_pid=%q hours_back=%d",
		query.Zipcodes, query.CityPID, query.HoursBack)

	stats, err := s.store.AggregateStats(ctx, query)
	if err != nil {
		logger.Warn("Stats aggregation failed: %v", err)
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}

	logger.Info("Stats: %d events", stats.TotalEvents)

	return &driving.StatsResult{
		Query: query,
		Stats: stats,
	}, nil
}

// Get retrieves a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*domain.CrimeEvent, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetEvent(ctx, id)
}

// Ingest stores a batch of events. Events without an ID are assigned
// one; zero timestamps default to now; an empty address type defaults
// to POI so ingested events remain searchable.
func (s *EventService) Ingest(ctx context.Context, events []domain.CrimeEvent) (int, error) {
	if s.store == nil {
		return 0, domain.ErrStoreUnavailable
	}

	logger.Section("Event Ingestion")
	logger.Debug("Ingesting %d events", len(events))

	stored := 0
	for i := range events {
		event := events[i]

		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.AddressType == "" {
			event.AddressType = domain.AddressTypePOI
		}
		if event.Risk != "" && !event.Risk.IsValid() {
			return stored, fmt.Errorf("event %s: %w: %q", event.ID, domain.ErrInvalidRiskLevel, event.Risk)
		}

		now := s.now().UTC()
		if event.CreatedAt.IsZero() {
			event.CreatedAt = now
		}
		if event.UpdatedAt.IsZero() {
			event.UpdatedAt = now
		}

		if err := s.store.SaveEvent(ctx, &event); err != nil {
			return stored, fmt.Errorf("saving event %s: %w", event.ID, err)
		}
		stored++
	}

	logger.Info("Ingested %d events", stored)
	return stored, nil
}

// Count returns the total number of stored events.
func (s *EventService) Count(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, domain.ErrStoreUnavailable
	}
	return s.store.CountEvents(ctx)
}

// wait blocks on the rate limiter, if one is configured.
func (s *EventService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return nil
}
