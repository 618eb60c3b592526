// Package history persists one record per processed request so the
// service can report recent activity. Trees and pixels are never
// stored, only the stats already surfaced to the client.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const getCurrentMigration = `PRAGMA user_version;`

const createRecordsTableQuery = `
CREATE TABLE IF NOT EXISTS processing_records (
id TEXT NOT NULL PRIMARY KEY,
operation TEXT NOT NULL,
threshold INTEGER NOT NULL,
alpha REAL NOT NULL,
width INTEGER NOT NULL,
height INTEGER NOT NULL,
node_count INTEGER NOT NULL,
compression_ratio REAL NOT NULL,
duration_ms INTEGER NOT NULL,
created_at DATETIME NOT NULL
);`

const createCreatedAtIndexQuery = `
CREATE INDEX IF NOT EXISTS records_created_at_index
ON processing_records(created_at);
`

type migration struct {
	name  string
	query string
}

var migrations = []migration{
	{name: "create processing records table", query: createRecordsTableQuery},
	{name: "add created_at index", query: createCreatedAtIndexQuery},
}

// Open opens (or creates) the sqlite database at path and brings the
// schema up to date. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, getCurrentMigration).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	required := len(migrations)
	if current >= required {
		return nil
	}
	slog.InfoContext(ctx, "migrating history db", "current", current, "required", required)

	for i := current; i < required; i++ {
		m := migrations[i]
		if _, err := db.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", i+1)); err != nil {
			return fmt.Errorf("bump schema version after %q: %w", m.name, err)
		}
	}
	return nil
}
