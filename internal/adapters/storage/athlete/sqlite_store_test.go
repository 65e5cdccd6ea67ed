package athlete

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"athleteportal/internal/adapters/storage"
	domain "athleteportal/internal/domain/athlete"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewSQLiteStore(db)
	s.now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }
	return s
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{
			ID: "a1", Name: "Riley Apex", Email: "Riley@Club.test",
			ProductTier: "Apex Performance", MembershipType: "PRG",
			AccountActive: "YES", WaiverStatus: "signed", ParentConsent: "yes",
			Metrics: map[string]float64{"sprint10m": 1.82, "cmj": 41},
		},
		{
			ID: "a2", Name: "Jo Camp", Email: "jo@club.test",
			Package: "Summer Camp", AccountActive: "yes", ParentConsent: "yes",
			Access: domain.Access{IsFullAccess: true},
		},
	}
}

// TestSQLiteStore_ReplaceAndList verifies a round trip keeps order and fields.
func TestSQLiteStore_ReplaceAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceNamespace(ctx, "default", sampleRecords()); err != nil {
		t.Fatalf("ReplaceNamespace: %v", err)
	}

	got, err := s.List(ctx, "default")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a1" || got[1].ID != "a2" {
		t.Errorf("order = %s,%s", got[0].ID, got[1].ID)
	}
	if got[0].Metrics["cmj"] != 41 || got[0].Metrics["sprint10m"] != 1.82 {
		t.Errorf("metrics = %v", got[0].Metrics)
	}
	if got[0].Email != "Riley@Club.test" {
		t.Errorf("email should keep original casing, got %q", got[0].Email)
	}
	if !got[1].Access.IsFullAccess || got[1].Package != "Summer Camp" {
		t.Errorf("second record = %+v", got[1])
	}
	if got[1].Metrics != nil {
		t.Errorf("empty metrics should decode to nil, got %v", got[1].Metrics)
	}
}

// TestSQLiteStore_ReplaceIsWholesale verifies a second upload drops old rows.
func TestSQLiteStore_ReplaceIsWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceNamespace(ctx, "default", sampleRecords()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	next := []domain.Record{{ID: "b1", Name: "New", Email: "new@club.test"}}
	if err := s.ReplaceNamespace(ctx, "default", next); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, _ := s.List(ctx, "default")
	if len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("List after replace = %+v", got)
	}
	if _, err := s.GetByID(ctx, "default", "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old record still present: %v", err)
	}
}

// TestSQLiteStore_ReplaceRollsBackOnDuplicate verifies a failed upload keeps the old roster.
func TestSQLiteStore_ReplaceRollsBackOnDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceNamespace(ctx, "default", sampleRecords()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	dup := []domain.Record{
		{ID: "x1", Name: "X", Email: "same@club.test"},
		{ID: "x2", Name: "Y", Email: "SAME@club.test"},
	}
	if err := s.ReplaceNamespace(ctx, "default", dup); err == nil {
		t.Fatal("expected constraint error")
	}

	got, _ := s.List(ctx, "default")
	if len(got) != 2 {
		t.Errorf("roster after failed replace has %d records, want 2", len(got))
	}
}

// TestSQLiteStore_Lookups verifies id and case-insensitive email lookup and namespace isolation.
func TestSQLiteStore_Lookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.ReplaceNamespace(ctx, "default", sampleRecords())
	s.ReplaceNamespace(ctx, "spring", []domain.Record{{ID: "a1", Name: "Other", Email: "other@club.test"}})

	r, err := s.GetByEmail(ctx, "default", "  riley@club.TEST ")
	if err != nil || r.ID != "a1" {
		t.Errorf("GetByEmail = %+v, %v", r, err)
	}
	r, err = s.GetByID(ctx, "spring", "a1")
	if err != nil || r.Name != "Other" {
		t.Errorf("GetByID(spring) = %+v, %v", r, err)
	}
	if _, err := s.GetByEmail(ctx, "spring", "riley@club.test"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("namespace leak: %v", err)
	}

	summaries, err := s.Namespaces(ctx)
	if err != nil {
		t.Fatalf("Namespaces: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Namespace != "default" || summaries[0].Count != 2 {
		t.Errorf("Namespaces = %+v", summaries)
	}
	if summaries[1].UpdatedAt != "2026-04-02T08:00:00Z" {
		t.Errorf("UpdatedAt = %q", summaries[1].UpdatedAt)
	}
}

// TestSQLiteStore_ListUnknownNamespace verifies an empty result is not nil.
func TestSQLiteStore_ListUnknownNamespace(t *testing.T) {
	s := newTestStore(t)
	got, err := s.List(context.Background(), "missing")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List = %#v, want empty slice", got)
	}
}
