package feature

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"athleteportal/internal/adapters/storage"
	"athleteportal/internal/domain/entitlement"
	domain "athleteportal/internal/domain/feature"
)

// ErrNotFound is returned when no feature has the requested key.
var ErrNotFound = errors.New("feature not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new feature catalog store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByKey retrieves a single feature by its stable key.
// PRE: key is non-empty
// POST: Returns the persisted feature or ErrNotFound
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) GetByKey(ctx context.Context, key string) (domain.Feature, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, title, description, kind, capability, enabled, position
		FROM feature
		WHERE key = ?
	`, key)
	return scanFeature(row.Scan)
}

// List returns the whole catalog in dashboard order.
// POST: Returns features sorted by position then key
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Feature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, title, description, kind, capability, enabled, position
		FROM feature
		ORDER BY position, key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Feature{}
	for rows.Next() {
		f, err := scanFeature(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Save upserts a feature.
// PRE: value passes Validate
// POST: Feature is persisted (insert or update)
// INVARIANT: No other features are modified
func (s *SQLiteStore) Save(ctx context.Context, value domain.Feature) error {
	if err := value.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feature (key, title, description, kind, capability, enabled, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			kind=excluded.kind,
			capability=excluded.capability,
			enabled=excluded.enabled,
			position=excluded.position
	`,
		value.Key,
		value.Title,
		value.Description,
		string(value.Kind),
		string(value.Capability),
		boolToInt(value.Enabled),
		value.Position,
	)
	if err != nil {
		return fmt.Errorf("save feature: %w", err)
	}
	return nil
}

// SeedMissing inserts catalog entries whose key is not yet stored and returns
// how many were added. Existing rows, including admin toggles, are untouched.
// PRE: every entry passes Validate
// POST: every key in catalog exists in the store
func (s *SQLiteStore) SeedMissing(ctx context.Context, catalog []domain.Feature) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, f := range catalog {
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("seed %q: %w", f.Key, err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO feature (key, title, description, kind, capability, enabled, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO NOTHING
		`, f.Key, f.Title, f.Description, string(f.Kind), string(f.Capability), boolToInt(f.Enabled), f.Position)
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", f.Key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, tx.Commit()
}

func scanFeature(scan func(dest ...any) error) (domain.Feature, error) {
	var f domain.Feature
	var kind, capability string
	var enabled int
	if err := scan(&f.Key, &f.Title, &f.Description, &kind, &capability, &enabled, &f.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Feature{}, ErrNotFound
		}
		return domain.Feature{}, err
	}
	f.Kind = domain.Kind(kind)
	f.Capability = entitlement.Capability(capability)
	f.Enabled = enabled != 0
	return f, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
