package web

import (
	"errors"
	"net/http"
	"time"

	"athleteportal/internal/adapters/http/middleware"
	featureStore "athleteportal/internal/adapters/storage/feature"
	"athleteportal/internal/application/orchestrators"
)

// handleFeatureList handles GET /api/features
func handleFeatureList(w http.ResponseWriter, r *http.Request) {
	list, err := stores.FeatureStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type featureToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleFeatureToggle handles PUT /api/features/{key}
func handleFeatureToggle(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req featureToggleRequest
	if err := strictDecode(w, r, &req); err != nil || req.Enabled == nil {
		http.Error(w, `body must be {"enabled": true|false}`, http.StatusBadRequest)
		return
	}

	f, err := orchestrators.ExecuteSetFeatureEnabled(r.Context(), orchestrators.SetFeatureEnabledInput{
		Key:       r.PathValue("key"),
		Enabled:   *req.Enabled,
		ChangedBy: session.Email,
	}, stores.FeatureStore)
	if errors.Is(err, featureStore.ErrNotFound) {
		http.Error(w, "feature not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleNamespaces handles GET /api/admin/namespaces
func handleNamespaces(w http.ResponseWriter, r *http.Request) {
	list, err := stores.AthleteStore.Namespaces(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": namespace, "namespaces": list})
}

// handleRosterReload handles POST /api/admin/roster/reload
func handleRosterReload(w http.ResponseWriter, r *http.Request) {
	n, err := orchestrators.ExecuteLoadRoster(r.Context(), namespace, orchestrators.LoadRosterDeps{
		AthleteStore: stores.AthleteStore,
		WorkingSet:   roster,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"namespace": namespace, "athletes": n})
}

// handleAdminPerf handles GET /api/admin/perf?minutes=60&top=10
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "performance collection is disabled", http.StatusNotFound)
		return
	}
	window := time.Duration(queryInt(r, "minutes", 60)) * time.Minute
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), queryInt(r, "top", 10)))
}
