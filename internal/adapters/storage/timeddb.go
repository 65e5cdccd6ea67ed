package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"athleteportal/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold used when none is configured.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and record timings to a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// A non-positive threshold falls back to DefaultSlowQuery; collector may be nil.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// queryLabel reduces a statement to "VERB table", e.g. "SELECT athlete".
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "?"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT", "REPLACE":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + fields[1]
		}
		return verb
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) && i+1 < len(fields) {
			return verb + " " + strings.Trim(fields[i+1], "(,;")
		}
	}
	return verb
}

func (t *TimedDB) observe(label string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing. Statements run on the returned
// transaction are not timed individually.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start)
	return tx, err
}

// Ping verifies the database connection.
func (t *TimedDB) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}
