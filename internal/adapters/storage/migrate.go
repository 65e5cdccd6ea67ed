package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "baseline", func(tx *sql.Tx) error {
		_, err := tx.Exec(baselineSchema)
		return err
	}},
	{2, "athlete namespace index", func(tx *sql.Tx) error {
		_, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_athlete_namespace_position ON athlete(namespace, position)")
		return err
	}},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an untracked database.
// PRE: db is a valid database connection
// POST: Returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the recorded version.
// path is only used for logging.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
// INVARIANT: each migration runs in its own transaction
func MigrateDB(db *sql.DB, path string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, description) VALUES (?, ?)", m.version, m.description); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description, "path", path)
	}
	return nil
}
