// Package memory provides in-memory implementations of the driven
// storage ports. Used by tests and zero-setup runs.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]domain.CrimeEvent
	now    func() time.Time
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]domain.CrimeEvent),
		now:    time.Now,
	}
}

// SetClock overrides the time source. Used by tests to pin the
// search window.
func (s *EventStore) SetClock(now func() time.Time) {
	s.now = now
}

// SaveEvent stores or updates a crime event.
func (s *EventStore) SaveEvent(_ context.Context, event *domain.CrimeEvent) error {
	if event.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = *event
	return nil
}

// GetEvent retrieves an event by ID.
func (s *EventStore) GetEvent(_ context.Context, id string) (*domain.CrimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &event, nil
}

// DeleteEvent removes an event.
func (s *EventStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

// SearchEvents returns events matching the query, most recently
// updated first, at most query.Limit results.
func (s *EventStore) SearchEvents(
	_ context.Context, query domain.SearchQuery,
) ([]domain.CrimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := s.now().UTC()
	start := end.Add(-time.Duration(query.HoursBack) * time.Hour)

	matched := make([]domain.CrimeEvent, 0)
	for _, event := range s.events {
		if !matchesWindow(event, start, end) {
			continue
		}
		if !matchesLocation(event, query) {
			continue
		}
		if query.Category != "" &&
			!strings.Contains(strings.ToLower(event.Category), strings.ToLower(query.Category)) {
			continue
		}
		if query.Risk != "" && event.Risk != query.Risk {
			continue
		}
		matched = append(matched, event)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	return matched, nil
}

// AggregateStats computes statistics over events matching the query.
func (s *EventStore) AggregateStats(
	_ context.Context, query domain.StatsQuery,
) (domain.CrimeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := s.now().UTC()
	start := end.Add(-time.Duration(query.HoursBack) * time.Hour)

	stats := domain.CrimeStats{
		Categories:       []string{},
		RiskDistribution: make(map[domain.RiskLevel]int),
	}

	seen := make(map[string]bool)
	var audioSum float64
	var audioCount int

	for _, event := range s.events {
		if !matchesWindow(event, start, end) {
			continue
		}
		if !matchesStatsLocation(event, query) {
			continue
		}

		stats.TotalEvents++

		if event.Category != "" && !seen[event.Category] {
			seen[event.Category] = true
			stats.Categories = append(stats.Categories, event.Category)
		}
		if event.Risk != "" {
			stats.RiskDistribution[event.Risk]++
		}
		if event.AudioDuration > 0 {
			audioSum += event.AudioDuration
			audioCount++
		}

		updated := event.UpdatedAt
		if stats.EarliestEvent == nil || updated.Before(*stats.EarliestEvent) {
			stats.EarliestEvent = &updated
		}
		if stats.LatestEvent == nil || updated.After(*stats.LatestEvent) {
			stats.LatestEvent = &updated
		}
	}

	if audioCount > 0 {
		stats.AvgAudioDuration = math.Round(audioSum/float64(audioCount)*100) / 100
	}

	sort.Strings(stats.Categories)

	return stats, nil
}

// CountEvents returns the total number of stored events.
func (s *EventStore) CountEvents(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// matchesWindow checks the POI restriction and the update-time window.
func matchesWindow(event domain.CrimeEvent, start, end time.Time) bool {
	if event.AddressType != domain.AddressTypePOI {
		return false
	}
	updated := event.UpdatedAt
	return !updated.Before(start) && !updated.After(end)
}

// matchesLocation checks the single location form of a search query.
func matchesLocation(event domain.CrimeEvent, query domain.SearchQuery) bool {
	switch {
	case len(query.Zipcodes) > 0:
		return zipcodesOverlap(event.Zipcodes, query.Zipcodes)
	case query.CityPID != "":
		return event.CityPID == query.CityPID
	case query.Geo != nil:
		return query.Geo.Contains(event.Latitude, event.Longitude)
	default:
		return false
	}
}

// matchesStatsLocation checks the location form of a stats query.
func matchesStatsLocation(event domain.CrimeEvent, query domain.StatsQuery) bool {
	if len(query.Zipcodes) > 0 {
		return zipcodesOverlap(event.Zipcodes, query.Zipcodes)
	}
	return event.CityPID == query.CityPID
}

// zipcodesOverlap reports whether any event zipcode appears in the
// queried set.
func zipcodesOverlap(eventZips, queryZips []string) bool {
	for _, qz := range queryZips {
		for _, ez := range eventZips {
			if ez == qz {
				return true
			}
		}
	}
	return false
}
