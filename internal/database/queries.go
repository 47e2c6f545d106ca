package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if no known format matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// Location Queries
// =============================================================================

const locationColumns = `id, name, latitude, longitude, timezone, diaspora, created_at, updated_at`

func scanLocation(row rowScanner) (*Location, error) {
	var loc Location
	var createdAt, updatedAt string
	if err := row.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Latitude,
		&loc.Longitude,
		&loc.TimeZone,
		&loc.Diaspora,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	loc.CreatedAt = parseTimestamp(createdAt)
	loc.UpdatedAt = parseTimestamp(updatedAt)
	return &loc, nil
}

// execer is satisfied by *DB and *Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateLocation validates and inserts a location, filling in its ID and
// timestamps. Returns ErrDuplicate if the name is taken.
func (db *DB) CreateLocation(ctx context.Context, loc *Location) error {
	return insertLocation(ctx, db, loc)
}

// CreateLocation inserts a location inside the transaction.
func (tx *Tx) CreateLocation(ctx context.Context, loc *Location) error {
	return insertLocation(ctx, tx, loc)
}

func insertLocation(ctx context.Context, ex execer, loc *Location) error {
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		return fmt.Errorf("%w: location name is required", ErrInvalid)
	}
	if err := loc.Calendar().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	now := time.Now().UTC()
	result, err := ex.ExecContext(ctx, `
		INSERT INTO locations (name, latitude, longitude, timezone, diaspora, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, loc.Name, loc.Latitude, loc.Longitude, loc.TimeZone, loc.Diaspora,
		formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("location %q: %w", loc.Name, ErrDuplicate)
		}
		return fmt.Errorf("insert location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get location id: %w", err)
	}

	loc.ID = id
	loc.CreatedAt = now
	loc.UpdatedAt = now
	return nil
}

// CountLocations returns the number of saved locations.
func (db *DB) CountLocations(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return n, nil
}

// GetLocation retrieves a location by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetLocation(ctx context.Context, id int64) (*Location, error) {
	row := db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query location %d: %w", id, err)
	}
	return loc, nil
}

// GetLocationByName retrieves a location by its unique name.
func (db *DB) GetLocationByName(ctx context.Context, name string) (*Location, error) {
	row := db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = ?`, name)
	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query location %q: %w", name, err)
	}
	return loc, nil
}

// ListLocations returns all locations ordered by name.
// Returns an empty slice if there are none.
func (db *DB) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}

	return locations, nil
}

// DeleteLocation removes a location and its snapshots.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteLocation(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureLocation creates loc unless a location with the same name exists,
// and returns the stored row either way.
func (db *DB) EnsureLocation(ctx context.Context, loc calendar.Location) (*Location, error) {
	existing, err := db.GetLocationByName(ctx, loc.Name)
	if err == nil {
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	row := LocationFromCalendar(loc)
	if err := db.CreateLocation(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// =============================================================================
// Snapshot Queries
// =============================================================================

// SaveSnapshot stores a complete facts document for a location.
func (db *DB) SaveSnapshot(ctx context.Context, locationID int64, facts *calendar.MoladFacts) (*FactsSnapshot, error) {
	if facts == nil {
		return nil, errors.New("facts are required")
	}

	payload, err := json.Marshal(facts)
	if err != nil {
		return nil, fmt.Errorf("marshal facts: %w", err)
	}

	snap := &FactsSnapshot{
		ID:         uuid.NewString(),
		LocationID: locationID,
		ComputedAt: facts.ComputedAt,
		Facts:      facts,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO facts_snapshots (id, location_id, computed_at, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, locationID, formatTimestamp(snap.ComputedAt), string(payload), formatTimestamp(snap.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	return snap, nil
}

// LatestSnapshot returns the most recently computed snapshot for a location.
// Returns ErrNotFound if none has been stored.
func (db *DB) LatestSnapshot(ctx context.Context, locationID int64) (*FactsSnapshot, error) {
	var snap FactsSnapshot
	var computedAt, payload, createdAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, location_id, computed_at, payload, created_at
		FROM facts_snapshots
		WHERE location_id = ?
		ORDER BY computed_at DESC, created_at DESC
		LIMIT 1
	`, locationID).Scan(&snap.ID, &snap.LocationID, &computedAt, &payload, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	var facts calendar.MoladFacts
	if err := json.Unmarshal([]byte(payload), &facts); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", snap.ID, err)
	}

	snap.Facts = &facts
	snap.ComputedAt = parseTimestamp(computedAt)
	snap.CreatedAt = parseTimestamp(createdAt)
	return &snap, nil
}

// PruneSnapshots deletes all but the newest keep snapshots of a location
// and returns how many were removed.
func (db *DB) PruneSnapshots(ctx context.Context, locationID int64, keep int) (int64, error) {
	result, err := db.ExecContext(ctx, `
		DELETE FROM facts_snapshots
		WHERE location_id = ?
		  AND id NOT IN (
			SELECT id FROM facts_snapshots
			WHERE location_id = ?
			ORDER BY computed_at DESC, created_at DESC
			LIMIT ?
		  )
	`, locationID, locationID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
