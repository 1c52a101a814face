package services

import (
	"context"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

// mockEventStore is a mock implementation of driven.EventStore.
type mockEventStore struct {
	saved      []domain.CrimeEvent
	event      *domain.CrimeEvent
	events     []domain.CrimeEvent
	stats      domain.CrimeStats
	count      int
	err        error
	lastSearch domain.SearchQuery
	lastStats  domain.StatsQuery
}

func (m *mockEventStore) SaveEvent(_ context.Context, event *domain.CrimeEvent) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *event)
	return nil
}

func (m *mockEventStore) GetEvent(_ context.Context, _ string) (*domain.CrimeEvent, error) {
	return m.event, m.err
}

func (m *mockEventStore) DeleteEvent(_ context.Context, _ string) error {
	return m.err
}

func (m *mockEventStore) SearchEvents(
	_ context.Context, query domain.SearchQuery,
) ([]domain.CrimeEvent, error) {
	m.lastSearch = query
	return m.events, m.err
}

func (m *mockEventStore) AggregateStats(
	_ context.Context, query domain.StatsQuery,
) (domain.CrimeStats, error) {
	m.lastStats = query
	return m.stats, m.err
}

func (m *mockEventStore) CountEvents(_ context.Context) (int, error) {
	return m.count, m.err
}
