package athlete

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"athleteportal/internal/adapters/storage"
	domain "athleteportal/internal/domain/athlete"
)

const selectColumns = `id, name, email, product_tier, membership_type, package,
	account_active, waiver_status, parent_consent, is_full_access, metrics`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new athlete cache store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// ReplaceNamespace swaps the cached roster for namespace wholesale.
// PRE: records have unique ids and emails (as enforced by domain.NewRoster)
// POST: namespace contains exactly records, in input order
// INVARIANT: readers see either the old or the new roster, never a mix
func (s *SQLiteStore) ReplaceNamespace(ctx context.Context, namespace string, records []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM athlete WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("clear namespace %q: %w", namespace, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO athlete (
			namespace, id, name, email, email_key,
			product_tier, membership_type, package,
			account_active, waiver_status, parent_consent,
			is_full_access, metrics, position, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for i, r := range records {
		metrics, err := encodeMetrics(r.Metrics)
		if err != nil {
			return fmt.Errorf("encode metrics for %q: %w", r.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			namespace,
			r.ID,
			r.Name,
			r.Email,
			domain.NormalizeKey(r.Email),
			r.ProductTier,
			r.MembershipType,
			r.Package,
			r.AccountActive,
			r.WaiverStatus,
			r.ParentConsent,
			boolToInt(r.Access.IsFullAccess),
			metrics,
			i,
			updatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert athlete %q: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the cached roster for namespace in upload order.
// POST: Returns an empty (non-nil) slice for an unknown namespace
func (s *SQLiteStore) List(ctx context.Context, namespace string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM athlete WHERE namespace = ? ORDER BY position", namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetByID retrieves one cached record by id.
func (s *SQLiteStore) GetByID(ctx context.Context, namespace, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM athlete WHERE namespace = ? AND id = ?", namespace, id)
	return notFound(scanRecord(row.Scan))
}

// GetByEmail retrieves one cached record by email, compared case-insensitively.
func (s *SQLiteStore) GetByEmail(ctx context.Context, namespace, email string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM athlete WHERE namespace = ? AND email_key = ?",
		namespace, domain.NormalizeKey(email))
	return notFound(scanRecord(row.Scan))
}

// Namespaces lists every cached namespace with its size.
func (s *SQLiteStore) Namespaces(ctx context.Context) ([]NamespaceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace, COUNT(*), MAX(updated_at)
		FROM athlete
		GROUP BY namespace
		ORDER BY namespace
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NamespaceSummary
	for rows.Next() {
		var ns NamespaceSummary
		if err := rows.Scan(&ns.Namespace, &ns.Count, &ns.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

func notFound(r domain.Record, err error) (domain.Record, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("athlete not cached: %w", domain.ErrNotFound)
	}
	return r, err
}

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var r domain.Record
	var fullAccess int
	var metrics string
	err := scan(
		&r.ID,
		&r.Name,
		&r.Email,
		&r.ProductTier,
		&r.MembershipType,
		&r.Package,
		&r.AccountActive,
		&r.WaiverStatus,
		&r.ParentConsent,
		&fullAccess,
		&metrics,
	)
	if err != nil {
		return domain.Record{}, err
	}
	r.Access.IsFullAccess = fullAccess != 0
	if r.Metrics, err = decodeMetrics(metrics); err != nil {
		return domain.Record{}, fmt.Errorf("decode metrics for %q: %w", r.ID, err)
	}
	return r, nil
}

func encodeMetrics(m map[string]float64) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func decodeMetrics(s string) (map[string]float64, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
