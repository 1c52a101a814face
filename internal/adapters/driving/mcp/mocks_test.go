package mcp

import (
	"context"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

// mockEventService is a mock implementation of driving.EventService.
type mockEventService struct {
	searchResult *driving.SearchResult
	statsResult  *driving.StatsResult
	event        *domain.CrimeEvent
	count        int
	err          error

	lastSearch domain.RawSearchQuery
	lastStats  domain.RawStatsQuery
}

func (m *mockEventService) Search(_ context.Context, raw domain.RawSearchQuery) (*driving.SearchResult, error) {
	m.lastSearch = raw
	return m.searchResult, m.err
}

func (m *mockEventService) Stats(_ context.Context, raw domain.RawStatsQuery) (*driving.StatsResult, error) {
	m.lastStats = raw
	return m.statsResult, m.err
}

func (m *mockEventService) Get(_ context.Context, _ string) (*domain.CrimeEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.event == nil {
		return nil, domain.ErrNotFound
	}
	return m.event, nil
}

func (m *mockEventService) Ingest(_ context.Context, events []domain.CrimeEvent) (int, error) {
	return len(events), m.err
}

func (m *mockEventService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}
