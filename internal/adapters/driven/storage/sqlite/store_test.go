package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "crimeradar-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// setupTestEventStore creates an event store with a pinned clock.
func setupTestEventStore(t *testing.T) (*eventStore, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)
	es := &eventStore{
		store: store,
		now:   func() time.Time { return testNow },
	}
	return es, cleanup
}

// testEvent builds a searchable event updated the given number of
// hours before the pinned test clock.
func testEvent(id string, hoursAgo int) *domain.CrimeEvent {
	return &domain.CrimeEvent{
		ID:          id,
		Title:       "Event " + id,
		Category:    "Theft",
		Risk:        domain.RiskLow,
		CityPID:     "milpitas,california",
		Zipcodes:    []string{"95035"},
		Latitude:    37.4323,
		Longitude:   -121.8996,
		AddressType: domain.AddressTypePOI,
		CreatedAt:   testNow.Add(-time.Duration(hoursAgo) * time.Hour),
		UpdatedAt:   testNow.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "crimeradar-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "events.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "crimeradar-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestEventStore_SaveGetDelete(t *testing.T) {
	es, cleanup := setupTestEventStore(t)
	defer cleanup()
	ctx := context.Background()

	event := testEvent("evt-1", 1)
	event.Description = "Shoplifting at the mall"
	event.AudioDuration = 12.5
	require.NoError(t, es.SaveEvent(ctx, event))

	got, err := es.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "Event evt-1", got.Title)
	assert.Equal(t, "Shoplifting at the mall", got.Description)
	assert.Equal(t, domain.RiskLow, got.Risk)
	assert.Equal(t, []string{"95035"}, got.Zipcodes)
	assert.Equal(t, 12.5, got.AudioDuration)

	// Upsert updates in place.
	event.Category = "Burglary"
	require.NoError(t, es.SaveEvent(ctx, event))
	got, err = es.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "Burglary", got.Category)

	count, err := es.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, es.DeleteEvent(ctx, "evt-1"))
	_, err = es.GetEvent(ctx, "evt-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventStore_SaveEvent_RequiresID(t *testing.T) {
	es, cleanup := setupTestEventStore(t)
	defer cleanup()

	err := es.SaveEvent(context.Background(), &domain.CrimeEvent{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEventStore_SearchEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("zipcode overlap with ordering and limit", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-old", 10)))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-new", 1)))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-mid", 5)))

		multi := testEvent("evt-multi", 2)
		multi.Zipcodes = []string{"95134", "95035"}
		require.NoError(t, es.SaveEvent(ctx, multi))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
			Limit:     3,
		})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "evt-new", events[0].ID)
		assert.Equal(t, "evt-multi", events[1].ID)
		assert.Equal(t, "evt-mid", events[2].ID)
	})

	t.Run("time window excludes stale events", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-recent", 2)))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-stale", 30)))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-recent", events[0].ID)
	})

	t.Run("non-POI events are excluded", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		street := testEvent("evt-street", 1)
		street.AddressType = "STREET"
		require.NoError(t, es.SaveEvent(ctx, street))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-poi", 1)))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-poi", events[0].ID)
	})

	t.Run("city pid equality", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		other := testEvent("evt-other", 1)
		other.CityPID = "fremont,california"
		require.NoError(t, es.SaveEvent(ctx, other))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-mil", 1)))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			CityPID:   "milpitas,california",
			HoursBack: 24,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-mil", events[0].ID)
	})

	t.Run("geo radius refines the bounding box", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-near", 1)))

		far := testEvent("evt-far", 1)
		far.Latitude, far.Longitude = 37.0, -122.5
		require.NoError(t, es.SaveEvent(ctx, far))

		// Inside the bounding box but outside the circle: offset by
		// the radius on both axes puts it in the box corner.
		corner := testEvent("evt-corner", 1)
		corner.Latitude = 37.4323 + 1.9/kmPerDegreeLat
		corner.Longitude = -121.8996 + 1.9/(kmPerDegreeLat*0.7934)
		require.NoError(t, es.SaveEvent(ctx, corner))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Geo:       &domain.GeoPoint{Latitude: 37.4323, Longitude: -121.8996, RadiusKM: 2},
			HoursBack: 24,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-near", events[0].ID)
	})

	t.Run("category filter is case-insensitive substring", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		offense := testEvent("evt-family", 1)
		offense.Category = "Family Offense"
		require.NoError(t, es.SaveEvent(ctx, offense))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-theft", 1)))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
			Limit:     10,
			Category:  "family",
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-family", events[0].ID)
	})

	t.Run("risk filter", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		high := testEvent("evt-high", 1)
		high.Risk = domain.RiskHigh
		require.NoError(t, es.SaveEvent(ctx, high))
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-low", 1)))

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
			Limit:     10,
			Risk:      domain.RiskHigh,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "evt-high", events[0].ID)
	})

	t.Run("no matches returns empty", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		events, err := es.SearchEvents(ctx, domain.SearchQuery{
			Zipcodes:  []string{"00000"},
			HoursBack: 24,
			Limit:     10,
		})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestEventStore_AggregateStats(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates matching events", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		theft := testEvent("evt-1", 2)
		theft.AudioDuration = 10
		require.NoError(t, es.SaveEvent(ctx, theft))

		assault := testEvent("evt-2", 6)
		assault.Category = "Assault"
		assault.Risk = domain.RiskHigh
		assault.AudioDuration = 15
		require.NoError(t, es.SaveEvent(ctx, assault))

		// Outside the window.
		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-3", 48)))

		stats, err := es.AggregateStats(ctx, domain.StatsQuery{
			Zipcodes:  []string{"95035"},
			HoursBack: 24,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalEvents)
		assert.Equal(t, []string{"Assault", "Theft"}, stats.Categories)
		assert.Equal(t, 1, stats.RiskDistribution[domain.RiskLow])
		assert.Equal(t, 1, stats.RiskDistribution[domain.RiskHigh])
		assert.Equal(t, 12.5, stats.AvgAudioDuration)
		require.NotNil(t, stats.EarliestEvent)
		require.NotNil(t, stats.LatestEvent)
		assert.True(t, stats.EarliestEvent.Equal(testNow.Add(-6*time.Hour)))
		assert.True(t, stats.LatestEvent.Equal(testNow.Add(-2*time.Hour)))
	})

	t.Run("city pid stats", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		require.NoError(t, es.SaveEvent(ctx, testEvent("evt-1", 1)))

		other := testEvent("evt-2", 1)
		other.CityPID = "fremont,california"
		require.NoError(t, es.SaveEvent(ctx, other))

		stats, err := es.AggregateStats(ctx, domain.StatsQuery{
			CityPID:   "milpitas,california",
			HoursBack: 24,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalEvents)
	})

	t.Run("empty result has no time bounds", func(t *testing.T) {
		es, cleanup := setupTestEventStore(t)
		defer cleanup()

		stats, err := es.AggregateStats(ctx, domain.StatsQuery{
			CityPID:   "nowhere,nevada",
			HoursBack: 24,
		})
		require.NoError(t, err)
		assert.Zero(t, stats.TotalEvents)
		assert.Empty(t, stats.Categories)
		assert.Nil(t, stats.EarliestEvent)
		assert.Nil(t, stats.LatestEvent)
		assert.Zero(t, stats.AvgAudioDuration)
	})
}
