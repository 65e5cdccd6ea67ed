package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"athleteportal/internal/adapters/storage"
	domain "athleteportal/internal/domain/account"
)

const accountColumns = "id, email, password_hash, role, created_at, failed_logins, locked_until, password_change_required"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanAccount(row.Scan)
}

// GetByEmail retrieves an Account by email, compared case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE email = ? COLLATE NOCASE",
		strings.TrimSpace(email))
	return scanAccount(row.Scan)
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; created_at is never overwritten
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var lockedUntil any
	if !entity.LockedUntil.IsZero() {
		lockedUntil = entity.LockedUntil.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			role=excluded.role,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until,
			password_change_required=excluded.password_change_required
	`,
		entity.ID,
		entity.Email,
		entity.PasswordHash,
		entity.Role,
		entity.CreatedAt.UTC().Format(time.RFC3339Nano),
		entity.FailedLogins,
		lockedUntil,
		boolToInt(entity.PasswordChangeRequired),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts based on the filter, newest first.
// A zero Limit means no limit.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + accountColumns + " FROM account")
	if filter.Role != "" {
		query.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	var changeRequired int
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
		&changeRequired,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = parseTime(lockedUntil.String)
	}
	entity.PasswordChangeRequired = changeRequired != 0
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
