package database

// migrationsSQL contains all database migrations, applied in order by
// version number.
var migrationsSQL = map[int]string{
	1: migrationV1Locations,
	2: migrationV2FactsSnapshots,
}

// migrationV1Locations creates the saved locations table. Names are unique
// so clients can refer to a location by name.
const migrationV1Locations = `
CREATE TABLE IF NOT EXISTS locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    latitude REAL NOT NULL CHECK (latitude BETWEEN -90 AND 90),
    longitude REAL NOT NULL CHECK (longitude BETWEEN -180 AND 180),
    timezone TEXT NOT NULL,
    diaspora INTEGER NOT NULL DEFAULT 1 CHECK (diaspora IN (0, 1)),
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2FactsSnapshots creates the table of refreshed facts. Each row
// is a complete MoladFacts document; failed refreshes are never stored.
const migrationV2FactsSnapshots = `
CREATE TABLE IF NOT EXISTS facts_snapshots (
    id TEXT PRIMARY KEY,
    location_id INTEGER NOT NULL,
    computed_at TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),

    FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE CASCADE
);

-- Latest snapshot per location
CREATE INDEX IF NOT EXISTS idx_facts_snapshots_location_computed
    ON facts_snapshots(location_id, computed_at DESC);
`
