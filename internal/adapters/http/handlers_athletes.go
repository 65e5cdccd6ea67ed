package web

import (
	"errors"
	"log/slog"
	"net/http"

	"athleteportal/internal/adapters/http/middleware"
	"athleteportal/internal/application/listutil"
	"athleteportal/internal/application/orchestrators"
	"athleteportal/internal/application/projections"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/report"
)

// maxImportBody caps roster uploads.
const maxImportBody = 10 << 20

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		Roster:       roster,
		Policy:       policy,
		FeatureStore: stores.FeatureStore,
	}
}

// writeLookupError maps roster lookup failures to 404 and anything else to 500.
func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, athlete.ErrNotFound) {
		http.Error(w, "athlete not found", http.StatusNotFound)
		return
	}
	internalError(w, err)
}

// handleMyDashboard handles GET /api/me/dashboard
func handleMyDashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	view, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{Key: session.Email}, dashboardDeps())
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAthleteDashboard handles GET /api/athletes/{key}/dashboard
func handleAthleteDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{Key: r.PathValue("key")}, dashboardDeps())
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAthleteList handles GET /api/athletes?q=&gate=&category=&sort=&dir=&page=&per_page=
func handleAthleteList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.AthleteListSortColumns, projections.AthleteListFilterKeys)
	result, err := projections.QueryGetAthleteList(r.Context(), projections.GetAthleteListQuery{Params: params},
		projections.GetAthleteListDeps{Roster: roster, Policy: policy})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAthleteAccess handles GET /api/athletes/{key}/access
func handleAthleteAccess(w http.ResponseWriter, r *http.Request) {
	row, err := projections.QueryGetAthleteAccess(r.Context(), projections.GetAthleteAccessQuery{Key: r.PathValue("key")},
		projections.GetAthleteListDeps{Roster: roster, Policy: policy})
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleAthleteImport handles POST /api/athletes/import?dry_run=1 with a CSV body.
func handleAthleteImport(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	dryRun := r.URL.Query().Get("dry_run") == "1" || r.URL.Query().Get("dry_run") == "true"

	result, err := orchestrators.ExecuteImportAthletes(r.Context(), orchestrators.ImportAthletesInput{
		Reader:     http.MaxBytesReader(w, r.Body, maxImportBody),
		Namespace:  namespace,
		ImportedBy: session.Email,
		DryRun:     dryRun,
	}, orchestrators.ImportAthletesDeps{
		AthleteStore: stores.AthleteStore,
		WorkingSet:   roster,
		GenerateID:   generateID,
	})

	var validation *orchestrators.ImportAthletesValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		http.Error(w, "roster upload too large", http.StatusRequestEntityTooLarge)
		return
	case errors.As(err, &validation):
		http.Error(w, validation.Message, http.StatusBadRequest)
		return
	case errors.Is(err, orchestrators.ErrNoValidRows):
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	case err != nil:
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createReportRequest struct {
	Score   int    `json:"score"`
	Notes   string `json:"notes"`
	EmailTo string `json:"emailTo"`
}

type reportResponse struct {
	Review   report.Review `json:"review"`
	Markdown string        `json:"markdown"`
	Warning  string        `json:"warning,omitempty"`
}

// handleReportCreate handles POST /api/athletes/{key}/reports
func handleReportCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req createReportRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteGenerateReport(r.Context(), orchestrators.GenerateReportInput{
		Key:      r.PathValue("key"),
		AuthorID: session.AccountID,
		Score:    req.Score,
		Notes:    req.Notes,
		EmailTo:  req.EmailTo,
	}, orchestrators.GenerateReportDeps{
		Roster:      roster,
		Policy:      policy,
		ReportStore: stores.ReportStore,
		Sender:      emailSender,
		Now:         timeNow,
		GenerateID:  generateID,
	})
	switch {
	case errors.Is(err, athlete.ErrNotFound):
		http.Error(w, "athlete not found", http.StatusNotFound)
		return
	case errors.Is(err, orchestrators.ErrReportNotPermitted):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, orchestrators.ErrInvalidRecipient),
		errors.Is(err, report.ErrScoreRange),
		errors.Is(err, report.ErrNotesTooLong),
		errors.Is(err, report.ErrMissingAuthor):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, orchestrators.ErrReportDelivery):
		slog.Warn("report_delivery_degraded", "review_id", result.Review.ID, "error", err)
		writeJSON(w, http.StatusAccepted, reportResponse{
			Review:   result.Review,
			Markdown: result.Markdown,
			Warning:  orchestrators.ErrReportDelivery.Error(),
		})
		return
	case err != nil:
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse{Review: result.Review, Markdown: result.Markdown})
}

// handleReportList handles GET /api/athletes/{key}/reports?limit=20
func handleReportList(w http.ResponseWriter, r *http.Request) {
	rec, err := roster.Current().Lookup(r.PathValue("key"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	reviews, err := stores.ReportStore.ListByAthlete(r.Context(), rec.ID, queryInt(r, "limit", 20))
	if err != nil {
		internalError(w, err)
		return
	}
	if reviews == nil {
		reviews = []report.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}
