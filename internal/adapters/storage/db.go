package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// dsnPragmas are applied to every file-backed connection.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// Open connects to the sqlite file at path, verifies it and migrates it.
// The caller must have imported a sqlite driver registered as "sqlite".
// PRE: path names a writable location
// POST: Returns a migrated pool, or an error with the pool closed
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := MigrateDB(db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// InitDB enables the connection pragmas and brings the schema to the latest version.
// PRE: db is a valid database connection
// POST: WAL mode and foreign keys enabled, all migrations applied
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return MigrateDB(db, "")
}

// baselineSchema is migration 1.
const baselineSchema = `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		password_change_required INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS athlete (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		email_key TEXT NOT NULL,
		product_tier TEXT NOT NULL DEFAULT '',
		membership_type TEXT NOT NULL DEFAULT '',
		package TEXT NOT NULL DEFAULT '',
		account_active TEXT NOT NULL DEFAULT '',
		waiver_status TEXT NOT NULL DEFAULT '',
		parent_consent TEXT NOT NULL DEFAULT '',
		is_full_access INTEGER NOT NULL DEFAULT 0,
		metrics TEXT NOT NULL DEFAULT '{}',
		position INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, id),
		UNIQUE (namespace, email_key)
	);

	CREATE TABLE IF NOT EXISTS feature (
		key TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		capability TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS report_review (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		html TEXT NOT NULL DEFAULT '',
		emailed_to TEXT NOT NULL DEFAULT '',
		message_id TEXT NOT NULL DEFAULT '',
		generated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_report_review_athlete ON report_review(athlete_id, generated_at);
`
