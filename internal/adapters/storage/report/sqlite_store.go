package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"athleteportal/internal/adapters/storage"
	domain "athleteportal/internal/domain/report"
)

// ErrNotFound is returned when no review has the requested id.
var ErrNotFound = errors.New("report review not found")

const reviewColumns = "id, athlete_id, author_id, score, notes, html, emailed_to, message_id, generated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new report review store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or replaces a review.
// PRE: value passes Validate
// POST: review is persisted
func (s *SQLiteStore) Save(ctx context.Context, value domain.Review) error {
	if err := value.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_review (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			score=excluded.score,
			notes=excluded.notes,
			html=excluded.html,
			emailed_to=excluded.emailed_to,
			message_id=excluded.message_id
	`,
		value.ID,
		value.AthleteID,
		value.AuthorID,
		value.Score,
		value.Notes,
		value.HTML,
		value.EmailedTo,
		value.MessageID,
		value.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save report_review: %w", err)
	}
	return nil
}

// GetByID retrieves one review.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Review, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM report_review WHERE id = ?", id)
	r, err := scanReview(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, ErrNotFound
	}
	return r, err
}

// ListByAthlete returns an athlete's reviews, newest first.
// A non-positive limit returns all reviews.
func (s *SQLiteStore) ListByAthlete(ctx context.Context, athleteID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM report_review WHERE athlete_id = ? ORDER BY generated_at DESC LIMIT ?",
		athleteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReview(scan func(dest ...any) error) (domain.Review, error) {
	var r domain.Review
	var generatedAt string
	if err := scan(&r.ID, &r.AthleteID, &r.AuthorID, &r.Score, &r.Notes, &r.HTML, &r.EmailedTo, &r.MessageID, &generatedAt); err != nil {
		return domain.Review{}, err
	}
	r.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
	return r, nil
}
