package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"athleteportal/internal/adapters/storage"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/entitlement"
)

// mockAthleteStoreForImport records ReplaceNamespace calls.
type mockAthleteStoreForImport struct {
	replaced map[string][]athlete.Record
	err      error
}

func newMockAthleteStoreForImport() *mockAthleteStoreForImport {
	return &mockAthleteStoreForImport{replaced: map[string][]athlete.Record{}}
}

// ReplaceNamespace implements AthleteStoreForImport.
func (m *mockAthleteStoreForImport) ReplaceNamespace(_ context.Context, ns string, records []athlete.Record) error {
	if m.err != nil {
		return m.err
	}
	m.replaced[ns] = records
	return nil
}

// List implements AthleteStoreForLoad.
func (m *mockAthleteStoreForImport) List(_ context.Context, ns string) ([]athlete.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.replaced[ns], nil
}

// mockRosterReplacer captures the last roster swapped in.
type mockRosterReplacer struct {
	roster *athlete.Roster
	calls  int
}

// Replace implements RosterReplacer.
func (m *mockRosterReplacer) Replace(r *athlete.Roster) {
	m.roster = r
	m.calls++
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func importDeps() (ImportAthletesDeps, *mockAthleteStoreForImport, *mockRosterReplacer) {
	store := newMockAthleteStoreForImport()
	ws := &mockRosterReplacer{}
	return ImportAthletesDeps{AthleteStore: store, WorkingSet: ws, GenerateID: sequentialIDs()}, store, ws
}

const rosterCSV = `ID,Name,Email,Product Tier,Package,Membership_Type,Account Active,Waiver,Parent Consent,Full Access,Sprint 10m,CMJ,Coach Notes
a1,Riley Apex,Riley@Club.test,Apex Performance,,PRG,YES,signed,yes,,1.82,41,keen
a2,Jo Camp,jo@club.test,,Summer Camp,,yes,,yes,true,,,
,Sam Starter,sam@club.test,Starter,Elite,,YES,,yes,,1.95,38%,
a4,,nobody@club.test,General,,,YES,,yes,,,,
a5,Bad Email,not-an-email,General,,,YES,,yes,,,,
a1,Dup Id,dup@club.test,General,,,YES,,yes,,,,
a7,Dup Email,RILEY@club.test,General,,,YES,,yes,,,,
`

// TestExecuteImportAthletes_Happy verifies aliasing, metrics, errors and persistence.
func TestExecuteImportAthletes_Happy(t *testing.T) {
	deps, store, ws := importDeps()

	res, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{
		Reader: strings.NewReader(rosterCSV), Namespace: "spring", ImportedBy: "coach-1",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteImportAthletes: %v", err)
	}

	if res.Total != 7 || res.Imported != 3 || res.Skipped != 4 {
		t.Errorf("Total/Imported/Skipped = %d/%d/%d, want 7/3/4", res.Total, res.Imported, res.Skipped)
	}
	if len(res.Errors) != 4 {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	wantRows := []int{5, 6, 7, 8}
	for i, e := range res.Errors {
		if e.Row != wantRows[i] {
			t.Errorf("error %d row = %d, want %d (%s)", i, e.Row, wantRows[i], e.Message)
		}
	}
	if !strings.Contains(res.Errors[2].Message, "duplicate id") || !strings.Contains(res.Errors[3].Message, "duplicate email") {
		t.Errorf("duplicate messages = %q / %q", res.Errors[2].Message, res.Errors[3].Message)
	}

	if len(res.TierConflicts) != 1 || res.TierConflicts[0].ID != "gen-1" || res.TierConflicts[0].Package != "Elite" {
		t.Errorf("TierConflicts = %+v", res.TierConflicts)
	}
	if strings.Join(res.MetricColumns, ",") != "CMJ,Sprint 10m" {
		t.Errorf("MetricColumns = %v", res.MetricColumns)
	}
	if strings.Join(res.Unknown, ",") != "Coach Notes" {
		t.Errorf("Unknown = %v", res.Unknown)
	}

	saved := store.replaced["spring"]
	if len(saved) != 3 {
		t.Fatalf("persisted %d records, want 3", len(saved))
	}
	riley := saved[0]
	if riley.Email != "riley@club.test" || riley.MembershipType != "PRG" || riley.Metrics["Sprint 10m"] != 1.82 {
		t.Errorf("riley = %+v", riley)
	}
	if !saved[1].Access.IsFullAccess || saved[1].Package != "Summer Camp" {
		t.Errorf("jo = %+v", saved[1])
	}
	if saved[2].Metrics["CMJ"] != 38 {
		t.Errorf("percent metric not parsed: %v", saved[2].Metrics)
	}

	if ws.calls != 1 || ws.roster.Len() != 3 {
		t.Fatalf("working set not replaced: calls=%d", ws.calls)
	}
	rec, err := ws.roster.Lookup("RILEY@club.test")
	if err != nil {
		t.Fatalf("Lookup by email: %v", err)
	}
	if got := entitlement.Resolve(rec); !got.Capabilities.ShowReports {
		t.Errorf("imported apex athlete should see reports: %+v", got)
	}
	sam, _ := ws.roster.Lookup("gen-1")
	if got := entitlement.Resolve(sam); got.Capabilities.ShowMentorship {
		t.Error("ProductTier must win over Package")
	}
}

// TestExecuteImportAthletes_DryRun verifies no writes happen.
func TestExecuteImportAthletes_DryRun(t *testing.T) {
	deps, store, ws := importDeps()

	res, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{
		Reader: strings.NewReader(rosterCSV), Namespace: "spring", DryRun: true,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteImportAthletes: %v", err)
	}
	if !res.DryRun || res.Imported != 3 {
		t.Errorf("result = %+v", res)
	}
	if len(store.replaced) != 0 || ws.calls != 0 {
		t.Error("dry run wrote to store or working set")
	}
}

// TestExecuteImportAthletes_MissingColumns verifies structural validation.
func TestExecuteImportAthletes_MissingColumns(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"no name", "email,tier\na@x.test,Apex\n", "NAME"},
		{"no email", "name,tier\nA,Apex\n", "EMAIL"},
		{"empty", "", "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _, _ := importDeps()
			_, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{Reader: strings.NewReader(tt.csv), Namespace: "ns"}, deps)
			var verr *ImportAthletesValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ImportAthletesValidationError", err)
			}
			if !strings.Contains(verr.Message, tt.want) {
				t.Errorf("message = %q, want it to mention %q", verr.Message, tt.want)
			}
		})
	}
}

// TestExecuteImportAthletes_NoValidRows verifies an all-invalid upload keeps the old roster.
func TestExecuteImportAthletes_NoValidRows(t *testing.T) {
	deps, store, ws := importDeps()
	_, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{
		Reader: strings.NewReader("name,email\n,bad\n"), Namespace: "ns",
	}, deps)
	if !errors.Is(err, ErrNoValidRows) {
		t.Errorf("err = %v, want ErrNoValidRows", err)
	}
	if len(store.replaced) != 0 || ws.calls != 0 {
		t.Error("empty import must not replace anything")
	}
}

// TestExecuteImportAthletes_PersistFailure verifies the working set is untouched on store error.
func TestExecuteImportAthletes_PersistFailure(t *testing.T) {
	deps, store, ws := importDeps()
	store.err = errors.New("disk full")

	_, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{
		Reader: strings.NewReader(rosterCSV), Namespace: "ns",
	}, deps)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v", err)
	}
	if ws.calls != 0 {
		t.Error("working set replaced despite persist failure")
	}
}

// TestExecuteImportAthletes_NonFiniteMetricCells verifies NaN and infinity
// cells are ignored rather than failing the whole upload.
func TestExecuteImportAthletes_NonFiniteMetricCells(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	store := athleteStore.NewSQLiteStore(db)
	ctx := context.Background()

	csv := "NAME,EMAIL,TIER,Readiness\nAda,ada@club.test,Apex,NaN\nBo,bo@club.test,Apex,72\nCy,cy@club.test,Apex,Inf\n"
	result, err := ExecuteImportAthletes(ctx, ImportAthletesInput{Reader: strings.NewReader(csv), Namespace: "default"},
		ImportAthletesDeps{AthleteStore: store, GenerateID: sequentialIDs()})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("Imported = %d, want 3", result.Imported)
	}
	if len(result.MetricColumns) != 1 || result.MetricColumns[0] != "Readiness" {
		t.Errorf("MetricColumns = %v, want [Readiness]", result.MetricColumns)
	}

	stored, err := store.List(ctx, "default")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored %d records, want 3", len(stored))
	}
	for _, rec := range stored {
		_, has := rec.Metrics["Readiness"]
		if want := rec.Name == "Bo"; has != want {
			t.Errorf("%s: Readiness present = %v, want %v (%v)", rec.Name, has, want, rec.Metrics)
		}
	}
}

// TestExecuteImportAthletes_IDEmailCollision verifies a row whose id equals
// another row's email is skipped instead of failing the roster build.
func TestExecuteImportAthletes_IDEmailCollision(t *testing.T) {
	deps, store, ws := importDeps()
	csv := "id,name,email\nshared@club.test,Ada,ada@club.test\nb2,Bo,Shared@Club.test\nc3,Cy,cy@club.test\n"
	result, err := ExecuteImportAthletes(context.Background(), ImportAthletesInput{Reader: strings.NewReader(csv), Namespace: "ns"}, deps)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("Imported/Skipped = %d/%d, want 2/1", result.Imported, result.Skipped)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 || !strings.Contains(result.Errors[0].Message, "matches the id on row 2") {
		t.Errorf("Errors = %+v", result.Errors)
	}
	if len(store.replaced["ns"]) != 2 {
		t.Errorf("saved %d records, want 2", len(store.replaced["ns"]))
	}
	if ws.roster == nil || ws.roster.Len() != 2 {
		t.Errorf("working set not replaced with 2 records")
	}
}

// TestNormalizeHeader verifies header folding.
func TestNormalizeHeader(t *testing.T) {
	for in, want := range map[string]string{
		" Product Tier ": "PRODUCTTIER",
		"parent_consent": "PARENTCONSENT",
		"is-full-access": "ISFULLACCESS",
		"EMAIL":          "EMAIL",
	} {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestExecuteLoadRoster verifies the cache round-trips into the working set.
func TestExecuteLoadRoster(t *testing.T) {
	ctx := context.Background()
	store := newMockAthleteStoreForImport()
	store.replaced["club"] = []athlete.Record{
		{ID: "a1", Name: "Riley", Email: "riley@club.test"},
		{ID: "a2", Name: "Ana", Email: "ana@club.test"},
	}
	ws := &mockRosterReplacer{}

	n, err := ExecuteLoadRoster(ctx, "club", LoadRosterDeps{AthleteStore: store, WorkingSet: ws})
	if err != nil || n != 2 {
		t.Fatalf("ExecuteLoadRoster = %d, %v", n, err)
	}
	if _, err := ws.roster.Lookup("ana@club.test"); err != nil {
		t.Errorf("lookup after load: %v", err)
	}

	n, err = ExecuteLoadRoster(ctx, "empty", LoadRosterDeps{AthleteStore: store, WorkingSet: ws})
	if err != nil || n != 0 || ws.roster.Len() != 0 {
		t.Errorf("empty namespace = %d, %v", n, err)
	}

	store.err = errors.New("disk gone")
	if _, err := ExecuteLoadRoster(ctx, "club", LoadRosterDeps{AthleteStore: store, WorkingSet: ws}); !errors.Is(err, store.err) {
		t.Errorf("err = %v", err)
	}
	if ws.calls != 2 {
		t.Errorf("failed load should not replace the working set, calls = %d", ws.calls)
	}
}
