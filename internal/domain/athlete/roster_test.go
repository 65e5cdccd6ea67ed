package athlete_test

import (
	"errors"
	"testing"

	"athleteportal/internal/domain/athlete"
)

func sampleRecords() []athlete.Record {
	return []athlete.Record{
		{ID: "a1", Name: "Alex", Email: "alex@example.com", ProductTier: "Apex"},
		{ID: "a2", Name: "Blair", Email: "Blair@Example.com", ProductTier: "General"},
	}
}

// TestNewRoster_LookupAgrees verifies id and email resolve to the same record.
func TestNewRoster_LookupAgrees(t *testing.T) {
	r, err := athlete.NewRoster(sampleRecords())
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}

	byID, ok := r.ByID("a2")
	if !ok {
		t.Fatal("expected a2 by id")
	}
	byEmail, ok := r.ByEmail(" blair@example.COM ")
	if !ok {
		t.Fatal("expected blair by email")
	}
	if byID.ID != byEmail.ID {
		t.Errorf("id lookup %q != email lookup %q", byID.ID, byEmail.ID)
	}

	rec, err := r.Lookup("alex@example.com")
	if err != nil || rec.ID != "a1" {
		t.Errorf("Lookup(email) = %+v, %v", rec, err)
	}
	if _, err := r.Lookup("missing"); !errors.Is(err, athlete.ErrNotFound) {
		t.Errorf("Lookup(missing) err = %v, want ErrNotFound", err)
	}
}

// TestNewRoster_RejectsDuplicates verifies uniqueness of id and email.
func TestNewRoster_RejectsDuplicates(t *testing.T) {
	dupID := append(sampleRecords(), athlete.Record{ID: "A1", Name: "Other", Email: "other@example.com"})
	if _, err := athlete.NewRoster(dupID); !errors.Is(err, athlete.ErrDuplicateID) {
		t.Errorf("duplicate id err = %v, want ErrDuplicateID", err)
	}

	dupEmail := append(sampleRecords(), athlete.Record{ID: "a3", Name: "Other", Email: "ALEX@example.com"})
	if _, err := athlete.NewRoster(dupEmail); !errors.Is(err, athlete.ErrDuplicateEmail) {
		t.Errorf("duplicate email err = %v, want ErrDuplicateEmail", err)
	}
}

// TestNewRoster_RejectsIDEmailCollision verifies a key cannot name two records.
func TestNewRoster_RejectsIDEmailCollision(t *testing.T) {
	tests := []struct {
		name    string
		records []athlete.Record
		wantErr error
	}{
		{
			name: "id equals earlier email",
			records: []athlete.Record{
				{ID: "a1", Name: "Alex", Email: "shared@example.com"},
				{ID: "Shared@Example.com", Name: "Blair", Email: "blair@example.com"},
			},
			wantErr: athlete.ErrAmbiguousKey,
		},
		{
			name: "email equals earlier id",
			records: []athlete.Record{
				{ID: "shared@example.com", Name: "Alex", Email: "alex@example.com"},
				{ID: "a2", Name: "Blair", Email: "SHARED@example.com"},
			},
			wantErr: athlete.ErrAmbiguousKey,
		},
		{
			name: "own id equals own email",
			records: []athlete.Record{
				{ID: "alex@example.com", Name: "Alex", Email: "alex@example.com"},
				{ID: "a2", Name: "Blair", Email: "blair@example.com"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := athlete.NewRoster(tt.records)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			rec, err := r.Lookup("alex@example.com")
			if err != nil || rec.Name != "Alex" {
				t.Errorf("Lookup = %+v, %v", rec, err)
			}
		})
	}
}

// TestRoster_SnapshotsAreIsolated verifies callers cannot mutate the roster.
func TestRoster_SnapshotsAreIsolated(t *testing.T) {
	in := sampleRecords()
	in[0].Metrics = map[string]float64{"load": 1}
	r, err := athlete.NewRoster(in)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}

	in[0].Metrics["load"] = 99
	out := r.Records()
	out[0].Name = "changed"

	rec, _ := r.ByID("a1")
	if rec.Name != "Alex" {
		t.Errorf("Name = %q, roster mutated via Records()", rec.Name)
	}
	if rec.Metrics["load"] != 1 {
		t.Errorf("load = %v, roster mutated via input slice", rec.Metrics["load"])
	}
}

// TestRoster_NilSafe verifies a nil roster behaves as empty.
func TestRoster_NilSafe(t *testing.T) {
	var r *athlete.Roster
	if r.Len() != 0 {
		t.Error("nil roster should be empty")
	}
	if _, err := r.Lookup("x"); !errors.Is(err, athlete.ErrNotFound) {
		t.Errorf("nil Lookup err = %v", err)
	}
	if athlete.EmptyRoster().Len() != 0 {
		t.Error("EmptyRoster should be empty")
	}
}
