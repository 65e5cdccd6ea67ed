package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"athleteportal/internal/adapters/storage"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	"athleteportal/internal/application/orchestrators"
	"athleteportal/internal/style"
)

var errImportInProgress = errors.New("another import holds the database lock")

type importOptions struct {
	csvPath   string
	dbPath    string
	namespace string
	dryRun    bool
}

func newImportCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a cached roster from a CSV",
		Long: `Import validates a roster CSV and replaces the namespace in the portal
database wholesale. A running server keeps serving its previous roster until
POST /api/admin/roster/reload is called.

Concurrent imports against the same database are refused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "", "Roster CSV to import")
	f.StringVar(&opts.dbPath, "db", "portal.db", "Portal sqlite database")
	f.StringVar(&opts.namespace, "namespace", "default", "Roster namespace to replace")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Validate only; write nothing")
	cmd.MarkFlagRequired("csv")
	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	ctx := cmd.Context()
	f, err := os.Open(opts.csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	input := orchestrators.ImportAthletesInput{
		Reader:     f,
		Namespace:  opts.namespace,
		ImportedBy: "portalctl",
		DryRun:     opts.dryRun,
	}
	deps := orchestrators.ImportAthletesDeps{GenerateID: uuid.NewString}

	if !opts.dryRun {
		lock := flock.New(opts.dbPath + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", lock.Path(), err)
		}
		if !locked {
			return errImportInProgress
		}
		defer lock.Unlock()

		db, err := storage.Open(ctx, opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		deps.AthleteStore = athleteStore.NewSQLiteStore(db)
	}

	result, err := orchestrators.ExecuteImportAthletes(ctx, input, deps)
	printImport(cmd, result)
	return err
}

func printImport(cmd *cobra.Command, result orchestrators.ImportAthletesResult) {
	w := cmd.OutOrStdout()
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%s row %d: %s\n", style.ErrorPrefix, e.Row, e.Message)
	}
	for _, c := range result.TierConflicts {
		fmt.Fprintf(w, "%s row %d (%s): product tier %q overrides package %q\n",
			style.WarningPrefix, c.Row, c.ID, c.ProductTier, c.Package)
	}
	if len(result.MetricColumns) > 0 {
		fmt.Fprintf(w, "%s metric columns: %v\n", style.ArrowPrefix, result.MetricColumns)
	}
	if len(result.Unknown) > 0 {
		fmt.Fprintln(w, style.Dim.Render(fmt.Sprintf("ignored columns: %v", result.Unknown)))
	}

	switch {
	case result.DryRun:
		fmt.Fprintf(w, "%s dry run: %d of %d rows valid for namespace %s\n",
			style.ArrowPrefix, result.Imported, result.Total, style.Bold.Render(result.Namespace))
	case result.Imported > 0:
		fmt.Fprintf(w, "%s imported %d of %d rows into namespace %s\n",
			style.SuccessPrefix, result.Imported, result.Total, style.Bold.Render(result.Namespace))
	}
}
