// Package sqlite provides a SQLite-backed implementation of the
// driven storage ports using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/crimeradar/crimeradar-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driven"
)

// kmPerDegreeLat is the approximate north-south span of one degree of
// latitude, used for the geo bounding-box prefilter.
const kmPerDegreeLat = 111.0

// Store is a SQLite-based storage that provides access to the event
// store interface through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.crimeradar/data/events.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".crimeradar", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "events.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EventStore returns an EventStore interface backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &eventStore{store: s, now: time.Now}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Event Store ====================

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
	now   func() time.Time
}

var _ driven.EventStore = (*eventStore)(nil)

// SaveEvent stores or updates a crime event.
func (s *eventStore) SaveEvent(ctx context.Context, event *domain.CrimeEvent) error {
	if event.ID == "" {
		return domain.ErrInvalidInput
	}

	zipcodesJSON, err := json.Marshal(event.Zipcodes)
	if err != nil {
		return fmt.Errorf("marshalling zipcodes: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, category, risk, city_pid, zipcodes,
			latitude, longitude, address_type, audio_duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			risk = excluded.risk,
			city_pid = excluded.city_pid,
			zipcodes = excluded.zipcodes,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			address_type = excluded.address_type,
			audio_duration = excluded.audio_duration,
			updated_at = excluded.updated_at
	`, event.ID, event.Title, event.Description, event.Category, string(event.Risk),
		event.CityPID, string(zipcodesJSON), event.Latitude, event.Longitude,
		event.AddressType, event.AudioDuration, event.CreatedAt, event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *eventStore) GetEvent(ctx context.Context, id string) (*domain.CrimeEvent, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, risk, city_pid, zipcodes,
			latitude, longitude, address_type, audio_duration, created_at, updated_at
		FROM events WHERE id = ?
	`, id)

	return scanEvent(row.Scan)
}

// DeleteEvent removes an event.
func (s *eventStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// SearchEvents returns events matching the query, most recently
// updated first, at most query.Limit results. The geographic form is
// prefiltered with a bounding box in SQL and refined with a haversine
// distance check on the scanned rows.
func (s *eventStore) SearchEvents(
	ctx context.Context, query domain.SearchQuery,
) ([]domain.CrimeEvent, error) {
	end := s.now().UTC()
	start := end.Add(-time.Duration(query.HoursBack) * time.Hour)

	where := []string{
		"address_type = ?",
		"updated_at >= ?",
		"updated_at <= ?",
	}
	args := []any{domain.AddressTypePOI, start, end}

	switch {
	case len(query.Zipcodes) > 0:
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(query.Zipcodes)), ",")
		where = append(where,
			"EXISTS (SELECT 1 FROM json_each(events.zipcodes) WHERE json_each.value IN ("+placeholders+"))")
		for _, z := range query.Zipcodes {
			args = append(args, z)
		}
	case query.CityPID != "":
		where = append(where, "city_pid = ?")
		args = append(args, query.CityPID)
	case query.Geo != nil:
		minLat, maxLat, minLon, maxLon := boundingBox(query.Geo)
		where = append(where, "latitude BETWEEN ? AND ?", "longitude BETWEEN ? AND ?")
		args = append(args, minLat, maxLat, minLon, maxLon)
	}

	if query.Category != "" {
		where = append(where, "LOWER(category) LIKE '%' || LOWER(?) || '%'")
		args = append(args, query.Category)
	}

	if query.Risk != "" {
		where = append(where, "risk = ?")
		args = append(args, string(query.Risk))
	}

	// The bounding box over-selects near the corners, so the limit is
	// applied after the haversine check rather than in SQL.
	sqlQuery := `
		SELECT id, title, description, category, risk, city_pid, zipcodes,
			latitude, longitude, address_type, audio_duration, created_at, updated_at
		FROM events WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_at DESC`

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.CrimeEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		if query.Geo != nil && !query.Geo.Contains(event.Latitude, event.Longitude) {
			continue
		}
		events = append(events, *event)
		if len(events) >= query.Limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// AggregateStats computes statistics over events matching the query.
func (s *eventStore) AggregateStats(
	ctx context.Context, query domain.StatsQuery,
) (domain.CrimeStats, error) {
	end := s.now().UTC()
	start := end.Add(-time.Duration(query.HoursBack) * time.Hour)

	where := []string{
		"address_type = ?",
		"updated_at >= ?",
		"updated_at <= ?",
	}
	args := []any{domain.AddressTypePOI, start, end}

	if len(query.Zipcodes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(query.Zipcodes)), ",")
		where = append(where,
			"EXISTS (SELECT 1 FROM json_each(events.zipcodes) WHERE json_each.value IN ("+placeholders+"))")
		for _, z := range query.Zipcodes {
			args = append(args, z)
		}
	} else {
		where = append(where, "city_pid = ?")
		args = append(args, query.CityPID)
	}

	clause := strings.Join(where, " AND ")

	stats := domain.CrimeStats{
		Categories:       []string{},
		RiskDistribution: make(map[domain.RiskLevel]int),
	}

	// Total and average audio duration. AVG ignores NULLs, so zero
	// durations are excluded via CASE.
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			AVG(CASE WHEN audio_duration > 0 THEN audio_duration END)
		FROM events WHERE `+clause, args...)

	var avgAudio sql.NullFloat64
	if err := row.Scan(&stats.TotalEvents, &avgAudio); err != nil {
		return stats, fmt.Errorf("aggregating totals: %w", err)
	}
	if avgAudio.Valid {
		stats.AvgAudioDuration = math.Round(avgAudio.Float64*100) / 100
	}

	// Time bounds. Selecting the bare column keeps the DATETIME
	// declared type so the driver scans it as a time.Time; MIN/MAX
	// expressions would come back as plain strings.
	if stats.TotalEvents > 0 {
		earliest, err := s.timeBound(ctx, clause, args, "ASC")
		if err != nil {
			return stats, err
		}
		latest, err := s.timeBound(ctx, clause, args, "DESC")
		if err != nil {
			return stats, err
		}
		stats.EarliestEvent = earliest
		stats.LatestEvent = latest
	}

	// Distinct categories.
	catRows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM events
		WHERE category != '' AND `+clause+`
		ORDER BY category`, args...)
	if err != nil {
		return stats, fmt.Errorf("querying categories: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var category string
		if err := catRows.Scan(&category); err != nil {
			return stats, fmt.Errorf("scanning category: %w", err)
		}
		stats.Categories = append(stats.Categories, category)
	}
	if err := catRows.Err(); err != nil {
		return stats, fmt.Errorf("iterating categories: %w", err)
	}

	// Risk distribution.
	riskRows, err := s.store.db.QueryContext(ctx, `
		SELECT risk, COUNT(*) FROM events
		WHERE risk != '' AND `+clause+`
		GROUP BY risk`, args...)
	if err != nil {
		return stats, fmt.Errorf("querying risk distribution: %w", err)
	}
	defer riskRows.Close()

	for riskRows.Next() {
		var risk string
		var count int
		if err := riskRows.Scan(&risk, &count); err != nil {
			return stats, fmt.Errorf("scanning risk count: %w", err)
		}
		stats.RiskDistribution[domain.RiskLevel(risk)] = count
	}
	if err := riskRows.Err(); err != nil {
		return stats, fmt.Errorf("iterating risk counts: %w", err)
	}

	return stats, nil
}

// timeBound returns the first updated_at under the given ordering,
// or nil when no rows match.
func (s *eventStore) timeBound(
	ctx context.Context, clause string, args []any, order string,
) (*time.Time, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT updated_at FROM events
		WHERE `+clause+`
		ORDER BY updated_at `+order+` LIMIT 1`, args...)

	var bound time.Time
	if err := row.Scan(&bound); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying time bound: %w", err)
	}
	return &bound, nil
}

// CountEvents returns the total number of stored events.
func (s *eventStore) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// boundingBox returns the latitude/longitude bounds enclosing the
// point's search radius. Longitude spread widens with latitude; near
// the poles the box degenerates to the full longitude range.
func boundingBox(g *domain.GeoPoint) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := g.RadiusKM / kmPerDegreeLat

	cosLat := math.Cos(g.Latitude * math.Pi / 180)
	lonDelta := 180.0
	if cosLat > 1e-6 {
		lonDelta = g.RadiusKM / (kmPerDegreeLat * cosLat)
	}

	minLat = math.Max(g.Latitude-latDelta, -90)
	maxLat = math.Min(g.Latitude+latDelta, 90)
	minLon = math.Max(g.Longitude-lonDelta, -180)
	maxLon = math.Min(g.Longitude+lonDelta, 180)
	return minLat, maxLat, minLon, maxLon
}

// scanEvent scans an event row using the given scan function, which
// works for both *sql.Row and *sql.Rows.
func scanEvent(scan func(dest ...any) error) (*domain.CrimeEvent, error) {
	var event domain.CrimeEvent
	var risk, zipcodesJSON string
	var createdAt, updatedAt sql.NullTime

	if err := scan(&event.ID, &event.Title, &event.Description, &event.Category,
		&risk, &event.CityPID, &zipcodesJSON, &event.Latitude, &event.Longitude,
		&event.AddressType, &event.AudioDuration, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	event.Risk = domain.RiskLevel(risk)

	if zipcodesJSON != "" {
		if err := json.Unmarshal([]byte(zipcodesJSON), &event.Zipcodes); err != nil {
			return nil, fmt.Errorf("unmarshaling zipcodes: %w", err)
		}
	}

	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		event.UpdatedAt = updatedAt.Time
	}

	return &event, nil
}
