package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainAccount "athleteportal/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const accountContextKey contextKey = "account"

// SessionTTL is how long a session stays valid after login.
const SessionTTL = 24 * time.Hour

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "portal_session"

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies = false

// Session represents an authenticated session.
type Session struct {
	AccountID              string
	Email                  string
	Role                   string
	PasswordChangeRequired bool
	CreatedAt              time.Time
}

// IsStaff reports whether the session belongs to a coach or admin.
func (s Session) IsStaff() bool {
	return s.Role == domainAccount.RoleAdmin || s.Role == domainAccount.RoleCoach
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns the token.
// PRE: accountID, email, role are non-empty
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(accountID, email, role string, passwordChangeRequired bool) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		AccountID:              accountID,
		Email:                  email,
		Role:                   role,
		PasswordChangeRequired: passwordChangeRequired,
		CreatedAt:              ss.now(),
	}
	return token, nil
}

// Get retrieves a session by token.
// POST: Returns session if present and younger than SessionTTL; expired
// sessions are evicted
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(session.CreatedAt) > SessionTTL {
		ss.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Update replaces the session for a given token in-place.
// PRE: token exists in the store
// POST: Session is replaced with the new value
func (ss *SessionStore) Update(token string, session Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.sessions[token]; !ok {
		return false
	}
	ss.sessions[token] = session
	return true
}

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; handlers use RequireRole for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole wraps a handler so only sessions with one of roles reach it.
// No roles means any signed-in account.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			if len(roleSet) > 0 && !roleSet[session.Role] {
				slog.Warn("auth_denied", "path", r.URL.Path, "account_id", session.AccountID, "role", session.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(accountContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, accountContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
