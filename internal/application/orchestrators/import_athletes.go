package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"sort"
	"strings"

	"athleteportal/internal/domain/athlete"
)

// AthleteStoreForImport is the slice of the athlete cache the import needs.
type AthleteStoreForImport interface {
	ReplaceNamespace(ctx context.Context, namespace string, records []athlete.Record) error
}

// RosterReplacer swaps the served working set.
type RosterReplacer interface {
	Replace(roster *athlete.Roster)
}

// ImportAthletesInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row; Namespace is non-empty.
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true.
// INVARIANT: The previous roster is replaced wholesale, never merged.
type ImportAthletesInput struct {
	Reader     io.Reader
	Namespace  string
	ImportedBy string
	DryRun     bool
}

// ImportAthletesResult holds aggregate counts and per-row findings from an import run.
type ImportAthletesResult struct {
	Namespace     string                       `json:"namespace"`
	Total         int                          `json:"total"`
	Imported      int                          `json:"imported"`
	Skipped       int                          `json:"skipped"`
	Errors        []ImportAthletesRowError     `json:"errors"`
	TierConflicts []ImportAthletesTierConflict `json:"tierConflicts"`
	MetricColumns []string                     `json:"metricColumns"`
	Unknown       []string                     `json:"unknownColumns"`
	DryRun        bool                         `json:"dryRun"`
	Records       []athlete.Record             `json:"-"`
}

// ImportAthletesRowError describes a validation error for a single CSV row.
type ImportAthletesRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportAthletesTierConflict records a row whose ProductTier and Package disagree.
// ProductTier wins; the row is still imported.
type ImportAthletesTierConflict struct {
	Row         int    `json:"row"`
	ID          string `json:"id"`
	ProductTier string `json:"productTier"`
	Package     string `json:"package"`
}

// ImportAthletesDeps holds external dependencies for the import orchestrator.
// WorkingSet may be nil when importing outside the server.
type ImportAthletesDeps struct {
	AthleteStore AthleteStoreForImport
	WorkingSet   RosterReplacer
	GenerateID   func() string
}

// ErrNoValidRows is returned when a non-dry-run import would leave an empty roster.
var ErrNoValidRows = errors.New("import contains no valid athlete rows")

// importColumns maps normalized CSV headers to record field names understood
// by athlete.FromFields.
var importColumns = map[string]string{
	"ID":             "id",
	"ATHLETEID":      "id",
	"NAME":           "name",
	"EMAIL":          "email",
	"PRODUCTTIER":    "productTier",
	"TIER":           "productTier",
	"PACKAGE":        "package",
	"MEMBERSHIPTYPE": "membershipType",
	"MEMBERSHIP":     "membershipType",
	"ACCOUNTACTIVE":  "accountActive",
	"ACTIVE":         "accountActive",
	"WAIVERSTATUS":   "waiverStatus",
	"WAIVER":         "waiverStatus",
	"PARENTCONSENT":  "parentConsent",
	"CONSENT":        "parentConsent",
	"ISFULLACCESS":   "isFullAccess",
	"FULLACCESS":     "isFullAccess",
}

// normalizeHeader folds case and drops spaces, underscores and hyphens.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(h)))
}

// ExecuteImportAthletes parses a roster CSV, builds a new working set and
// persists it under the namespace.
// PRE: Input.Reader contains a CSV with at least NAME and EMAIL columns.
// POST: Unless DryRun, the namespace cache and the working set hold exactly the valid rows.
// INVARIANT: When DryRun=true no writes occur. A failed persist leaves the working set untouched.
func ExecuteImportAthletes(ctx context.Context, input ImportAthletesInput, deps ImportAthletesDeps) (ImportAthletesResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportAthletesResult{}, &ImportAthletesValidationError{Message: "CSV is empty"}
		}
		return ImportAthletesResult{}, &ImportAthletesValidationError{Message: "CSV header unreadable: " + err.Error(), Err: err}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	fieldFor := make([]string, len(header))
	seenField := map[string]bool{}
	var extra []int
	for i, h := range header {
		if field, ok := importColumns[normalizeHeader(h)]; ok && !seenField[field] {
			fieldFor[i] = field
			seenField[field] = true
			continue
		}
		if strings.TrimSpace(h) != "" {
			extra = append(extra, i)
		}
	}
	if !seenField["name"] {
		return ImportAthletesResult{}, &ImportAthletesValidationError{Message: "CSV missing required column: NAME"}
	}
	if !seenField["email"] {
		return ImportAthletesResult{}, &ImportAthletesValidationError{Message: "CSV missing required column: EMAIL"}
	}

	result := ImportAthletesResult{Namespace: input.Namespace, DryRun: input.DryRun}
	numericCols := map[int]bool{}
	seenIDs := map[string]int{}
	seenEmails := map[string]int{}
	var records []athlete.Record
	rowNum := 1

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return ImportAthletesResult{}, &ImportAthletesValidationError{Message: fmt.Sprintf("CSV row %d unreadable: %v", rowNum, err), Err: err}
		}
		if blankRow(row) {
			continue
		}
		result.Total++

		fields := make(map[string]any, len(row))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if fieldFor[i] != "" {
				fields[fieldFor[i]] = cell
				continue
			}
			if _, ok := athlete.ParseMetric(cell); ok {
				fields[strings.TrimSpace(header[i])] = cell
				numericCols[i] = true
			}
		}
		rec := athlete.FromFields(fields)

		if err := rec.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportAthletesRowError{Row: rowNum, Message: rowMessage(err, rec)})
			result.Skipped++
			continue
		}
		addr, _ := mail.ParseAddress(rec.Email)
		rec.Email = strings.ToLower(addr.Address)
		rec.Name = strings.TrimSpace(rec.Name)
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = deps.GenerateID()
		}

		idKey := athlete.NormalizeKey(rec.ID)
		if first, dup := seenIDs[idKey]; dup {
			result.Errors = append(result.Errors, ImportAthletesRowError{Row: rowNum, Message: fmt.Sprintf("duplicate id %q (first seen on row %d)", rec.ID, first)})
			result.Skipped++
			continue
		}
		if first, dup := seenEmails[rec.Email]; dup {
			result.Errors = append(result.Errors, ImportAthletesRowError{Row: rowNum, Message: fmt.Sprintf("duplicate email %q (first seen on row %d)", rec.Email, first)})
			result.Skipped++
			continue
		}
		if first, clash := seenEmails[idKey]; clash {
			result.Errors = append(result.Errors, ImportAthletesRowError{Row: rowNum, Message: fmt.Sprintf("id %q matches the email on row %d", rec.ID, first)})
			result.Skipped++
			continue
		}
		if first, clash := seenIDs[rec.Email]; clash {
			result.Errors = append(result.Errors, ImportAthletesRowError{Row: rowNum, Message: fmt.Sprintf("email %q matches the id on row %d", rec.Email, first)})
			result.Skipped++
			continue
		}
		seenIDs[idKey] = rowNum
		seenEmails[rec.Email] = rowNum

		if rec.TierConflict() {
			result.TierConflicts = append(result.TierConflicts, ImportAthletesTierConflict{
				Row: rowNum, ID: rec.ID, ProductTier: rec.ProductTier, Package: rec.Package,
			})
			slog.Warn("athletes_import_tier_conflict",
				"row", rowNum,
				"athlete_id", rec.ID,
				"product_tier", rec.ProductTier,
				"package", rec.Package,
			)
		}

		records = append(records, rec)
		result.Imported++
	}

	for _, i := range extra {
		if numericCols[i] {
			result.MetricColumns = append(result.MetricColumns, strings.TrimSpace(header[i]))
		} else {
			result.Unknown = append(result.Unknown, strings.TrimSpace(header[i]))
		}
	}
	sort.Strings(result.MetricColumns)
	result.Records = records

	roster, err := athlete.NewRoster(records)
	if err != nil {
		return result, fmt.Errorf("build roster: %w", err)
	}

	if !input.DryRun {
		if len(records) == 0 {
			return result, ErrNoValidRows
		}
		if err := deps.AthleteStore.ReplaceNamespace(ctx, input.Namespace, records); err != nil {
			slog.Error("athletes_import_persist_failed", "namespace", input.Namespace, "err", err)
			return result, fmt.Errorf("persist roster: %w", err)
		}
		if deps.WorkingSet != nil {
			deps.WorkingSet.Replace(roster)
		}
	}

	slog.Info("athletes_import",
		"by", input.ImportedBy,
		"namespace", input.Namespace,
		"dry_run", input.DryRun,
		"total", result.Total,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"tier_conflicts", len(result.TierConflicts),
		"metric_columns", len(result.MetricColumns),
	)

	return result, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowMessage(err error, rec athlete.Record) string {
	switch {
	case errors.Is(err, athlete.ErrEmptyName):
		return "name is required"
	case errors.Is(err, athlete.ErrInvalidEmail):
		return "invalid email: " + rec.Email
	default:
		return err.Error()
	}
}

// ImportAthletesValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
// Err holds the underlying read error, if any.
type ImportAthletesValidationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ImportAthletesValidationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying read error.
func (e *ImportAthletesValidationError) Unwrap() error {
	return e.Err
}
