package web

import (
	"net/http"

	"athleteportal/internal/adapters/http/middleware"
	"athleteportal/internal/domain/account"
)

// registerRoutes maps every API path to its handler and role guard.
func registerRoutes(mux *http.ServeMux) {
	signedIn := middleware.RequireRole()
	staff := middleware.RequireRole(account.RoleAdmin, account.RoleCoach)
	admin := middleware.RequireRole(account.RoleAdmin)

	mux.HandleFunc("GET /healthz", handleHealthz)

	// Auth
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.Handle("POST /api/password", signedIn(http.HandlerFunc(handleChangePassword)))

	// Athletes
	mux.Handle("GET /api/me/dashboard", signedIn(http.HandlerFunc(handleMyDashboard)))
	mux.Handle("GET /api/athletes", staff(http.HandlerFunc(handleAthleteList)))
	mux.Handle("POST /api/athletes/import", staff(http.HandlerFunc(handleAthleteImport)))
	mux.Handle("GET /api/athletes/{key}/access", staff(http.HandlerFunc(handleAthleteAccess)))
	mux.Handle("GET /api/athletes/{key}/dashboard", staff(http.HandlerFunc(handleAthleteDashboard)))
	mux.Handle("GET /api/athletes/{key}/reports", staff(http.HandlerFunc(handleReportList)))
	mux.Handle("POST /api/athletes/{key}/reports", staff(http.HandlerFunc(handleReportCreate)))

	// Features
	mux.Handle("GET /api/features", staff(http.HandlerFunc(handleFeatureList)))
	mux.Handle("PUT /api/features/{key}", admin(http.HandlerFunc(handleFeatureToggle)))

	// Admin
	mux.Handle("GET /api/accounts", admin(http.HandlerFunc(handleAccountList)))
	mux.Handle("POST /api/accounts", admin(http.HandlerFunc(handleAccountCreate)))
	mux.Handle("GET /api/admin/namespaces", admin(http.HandlerFunc(handleNamespaces)))
	mux.Handle("POST /api/admin/roster/reload", admin(http.HandlerFunc(handleRosterReload)))
	mux.Handle("GET /api/admin/perf", admin(http.HandlerFunc(handleAdminPerf)))
}
