package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"athleteportal/internal/adapters/storage"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	"athleteportal/internal/application/orchestrators"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/entitlement"
	"athleteportal/internal/style"
)

var errSourceRequired = errors.New("exactly one of --csv, --db or --record is required")

type resolveOptions struct {
	csvPath   string
	dbPath    string
	jsonPath  string
	namespace string
	key       string
	asJSON    bool
}

// resolvedAthlete is one row of resolve --json output.
type resolvedAthlete struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Tier       string                 `json:"tier"`
	Resolution entitlement.Resolution `json:"resolution"`
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve entitlements for a roster",
		Long: `Resolve runs the payment, waiver and consent gates and the tier
categories for every athlete in a roster CSV, a cached namespace or a
JSON file holding one athlete object or an array of them. JSON gate fields
must be strings; any other type fails the gate.

With --key only the athlete whose id or email matches is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "", "Roster CSV to resolve")
	f.StringVar(&opts.dbPath, "db", "", "Portal sqlite database to read the cached roster from")
	f.StringVar(&opts.jsonPath, "record", "", "JSON athlete record (object or array) to resolve")
	f.StringVar(&opts.namespace, "namespace", "default", "Cached roster namespace")
	f.StringVar(&opts.key, "key", "", "Only resolve the athlete with this id or email")
	f.BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func runResolve(cmd *cobra.Command, root *rootOptions, opts *resolveOptions) error {
	sources := 0
	for _, p := range []string{opts.csvPath, opts.dbPath, opts.jsonPath} {
		if p != "" {
			sources++
		}
	}
	if sources != 1 {
		return errSourceRequired
	}
	policy, err := root.policy()
	if err != nil {
		return err
	}

	var records []athlete.Record
	switch {
	case opts.csvPath != "":
		records, err = recordsFromCSV(cmd, opts)
	case opts.jsonPath != "":
		records, err = recordsFromJSON(opts)
	default:
		records, err = recordsFromDB(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}

	out := make([]resolvedAthlete, 0, len(records))
	for _, rec := range records {
		out = append(out, resolvedAthlete{
			ID:         rec.ID,
			Name:       rec.Name,
			Email:      rec.Email,
			Tier:       rec.Tier(),
			Resolution: policy.Resolve(rec),
		})
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printResolved(cmd, out)
	return nil
}

// recordsFromCSV parses the file with the import pipeline in dry-run mode so
// the CLI and the upload endpoint agree on every row.
func recordsFromCSV(cmd *cobra.Command, opts *resolveOptions) ([]athlete.Record, error) {
	f, err := os.Open(opts.csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := orchestrators.ExecuteImportAthletes(cmd.Context(), orchestrators.ImportAthletesInput{
		Reader:     f,
		Namespace:  opts.namespace,
		ImportedBy: "portalctl",
		DryRun:     true,
	}, orchestrators.ImportAthletesDeps{GenerateID: uuid.NewString})
	if err != nil {
		return nil, err
	}
	for _, rowErr := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s row %d: %s\n", style.WarningPrefix, rowErr.Row, rowErr.Message)
	}

	return filterByKey(result.Records, opts.key)
}

// filterByKey narrows records to the one matching key, if key is set.
func filterByKey(records []athlete.Record, key string) ([]athlete.Record, error) {
	if key == "" {
		return records, nil
	}
	roster, err := athlete.NewRoster(records)
	if err != nil {
		return nil, err
	}
	rec, err := roster.Lookup(key)
	if err != nil {
		return nil, err
	}
	return []athlete.Record{rec}, nil
}

func recordsFromJSON(opts *resolveOptions) ([]athlete.Record, error) {
	data, err := os.ReadFile(opts.jsonPath)
	if err != nil {
		return nil, err
	}
	records, err := athlete.DecodeJSONRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.jsonPath, err)
	}
	return filterByKey(records, opts.key)
}

func recordsFromDB(ctx context.Context, opts *resolveOptions) ([]athlete.Record, error) {
	db, err := storage.Open(ctx, opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	store := athleteStore.NewSQLiteStore(db)

	if opts.key == "" {
		return store.List(ctx, opts.namespace)
	}
	rec, err := store.GetByID(ctx, opts.namespace, opts.key)
	if errors.Is(err, athlete.ErrNotFound) {
		rec, err = store.GetByEmail(ctx, opts.namespace, opts.key)
	}
	if err != nil {
		return nil, fmt.Errorf("%s in namespace %q: %w", opts.key, opts.namespace, err)
	}
	return []athlete.Record{rec}, nil
}

func printResolved(cmd *cobra.Command, rows []resolvedAthlete) {
	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, style.Dim.Render("No athletes."))
		return
	}

	t := style.Table("ID", "NAME", "TIER", "GATE", "CATEGORIES", "CAPABILITIES")
	passed := 0
	for _, r := range rows {
		gate := style.Error.Render(r.Resolution.Gate.String())
		if !r.Resolution.Gate.IsBlocked() {
			gate = style.Success.Render(r.Resolution.Gate.String())
			passed++
		}
		t.Row(r.ID, r.Name, dash(r.Tier), gate,
			dash(strings.Join(r.Resolution.Categories, ", ")),
			dash(joinCapabilities(r.Resolution.Capabilities.Granted())))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, style.Dim.Render(fmt.Sprintf("%d athletes, %d passed, %d blocked", len(rows), passed, len(rows)-passed)))
}

func joinCapabilities(caps []entitlement.Capability) string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
