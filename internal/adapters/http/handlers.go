package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"athleteportal/internal/adapters/http/middleware"
	accountStore "athleteportal/internal/adapters/storage/account"
	"athleteportal/internal/application/orchestrators"
	accountDomain "athleteportal/internal/domain/account"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxJSONBody caps decoded request bodies.
const maxJSONBody = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if healthCheck != nil {
		if err := healthCheck(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"namespace": namespace,
		"athletes":  roster.Current().Len(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccountID              string `json:"accountId"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"passwordChangeRequired"`
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow})
	switch {
	case errors.Is(err, orchestrators.ErrAccountLocked):
		http.Error(w, err.Error(), http.StatusLocked)
		return
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role, result.PasswordChangeRequired)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse(result))
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleChangePassword handles POST /api/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req changePasswordRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       session.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	switch {
	case errors.Is(err, orchestrators.ErrCurrentPasswordWrong):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, orchestrators.ErrPasswordFieldsRequired),
		errors.Is(err, orchestrators.ErrNewPasswordSame),
		errors.Is(err, accountDomain.ErrPasswordTooShort),
		errors.Is(err, accountDomain.ErrEmptyPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		session.PasswordChangeRequired = false
		sessions.Update(cookie.Value, session)
	}
	w.WriteHeader(http.StatusNoContent)
}

// accountView is the public shape of an account; the password hash never leaves the server.
type accountView struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	Role                   string    `json:"role"`
	CreatedAt              time.Time `json:"createdAt"`
	Locked                 bool      `json:"locked"`
	PasswordChangeRequired bool      `json:"passwordChangeRequired"`
}

// handleAccountList handles GET /api/accounts?role=coach
func handleAccountList(w http.ResponseWriter, r *http.Request) {
	list, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{
		Role:  r.URL.Query().Get("role"),
		Limit: queryInt(r, "limit", 0),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	now := timeNow()
	views := make([]accountView, 0, len(list))
	for _, a := range list {
		views = append(views, accountView{
			ID:                     a.ID,
			Email:                  a.Email,
			Role:                   a.Role,
			CreatedAt:              a.CreatedAt,
			Locked:                 a.IsLocked(now),
			PasswordChangeRequired: a.PasswordChangeRequired,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type createAccountRequest struct {
	Email                  string `json:"email"`
	Password               string `json:"password"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"passwordChangeRequired"`
}

// handleAccountCreate handles POST /api/accounts
func handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req createAccountRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:                  req.Email,
		Password:               req.Password,
		Role:                   req.Role,
		PasswordChangeRequired: req.PasswordChangeRequired,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		Roster:       roster.Current(),
		Now:          timeNow,
	})
	switch {
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, orchestrators.ErrAthleteNotOnRoster), isAccountValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	slog.Info("account_created_by_admin", "account_id", id, "role", req.Role, "by", session.AccountID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func isAccountValidationError(err error) bool {
	for _, target := range []error{
		accountDomain.ErrEmptyEmail,
		accountDomain.ErrEmailTooLong,
		accountDomain.ErrInvalidEmail,
		accountDomain.ErrInvalidRole,
		accountDomain.ErrEmptyPassword,
		accountDomain.ErrPasswordTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
