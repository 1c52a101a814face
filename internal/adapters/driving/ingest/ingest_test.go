package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

// mockEventService records ingested events.
type mockEventService struct {
	ingested []domain.CrimeEvent
	err      error
}

func (m *mockEventService) Search(ctx context.Context, raw domain.RawSearchQuery) (*driving.SearchResult, error) {
	return nil, nil
}

func (m *mockEventService) Stats(ctx context.Context, raw domain.RawStatsQuery) (*driving.StatsResult, error) {
	return nil, nil
}

func (m *mockEventService) Get(ctx context.Context, id string) (*domain.CrimeEvent, error) {
	return nil, domain.ErrNotFound
}

func (m *mockEventService) Ingest(ctx context.Context, events []domain.CrimeEvent) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.ingested = append(m.ingested, events...)
	return len(events), nil
}

func (m *mockEventService) Count(ctx context.Context) (int, error) {
	return len(m.ingested), nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile_Array(t *testing.T) {
	service := &mockEventService{}
	path := writeFile(t, t.TempDir(), "events.json",
		`[{"title": "Burglary", "risk": "high"}, {"title": "Theft", "risk": "low"}]`)

	n, err := LoadFile(context.Background(), service, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, service.ingested, 2)
	assert.Equal(t, "Burglary", service.ingested[0].Title)
	assert.Equal(t, domain.RiskHigh, service.ingested[0].Risk)
}

func TestLoadFile_SingleObject(t *testing.T) {
	service := &mockEventService{}
	path := writeFile(t, t.TempDir(), "event.json",
		`{"title": "Assault", "risk": "medium", "zipcodes": ["94103"]}`)

	n, err := LoadFile(context.Background(), service, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, service.ingested, 1)
	assert.Equal(t, []string{"94103"}, service.ingested[0].Zipcodes)
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	service := &mockEventService{}
	path := writeFile(t, t.TempDir(), "bad.json", `{not json`)

	_, err := LoadFile(context.Background(), service, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, service.ingested)
}

func TestLoadFile_MissingFile(t *testing.T) {
	service := &mockEventService{}

	_, err := LoadFile(context.Background(), service, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Empty(t, service.ingested)
}

func TestNewWatcher(t *testing.T) {
	t.Run("requires a service", func(t *testing.T) {
		_, err := NewWatcher(nil, t.TempDir())
		assert.Error(t, err)
	})

	t.Run("requires an existing directory", func(t *testing.T) {
		_, err := NewWatcher(&mockEventService{}, filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})

	t.Run("rejects a plain file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "file.json", `[]`)
		_, err := NewWatcher(&mockEventService{}, path)
		assert.Error(t, err)
	})
}

func TestWatcher_LoadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"title": "Robbery", "risk": "high"}]`)
	writeFile(t, dir, "skip.txt", `not events`)

	service := &mockEventService{}
	w, err := NewWatcher(service, dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, service.ingested, 1)
	assert.Equal(t, "Robbery", service.ingested[0].Title)
}

func TestWatcher_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	service := &mockEventService{}
	w, err := NewWatcher(service, dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watch loop time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "new.json", `[{"title": "Vandalism", "risk": "low"}]`)

	assert.Eventually(t, func() bool {
		return len(service.ingested) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
