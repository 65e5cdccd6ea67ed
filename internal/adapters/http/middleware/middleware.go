package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// visitorTTL is how long an idle IP keeps its bucket.
const visitorTTL = 5 * time.Minute

// RateLimiter provides a per-IP token bucket rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // tokens per interval
	interval time.Duration // refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing rate requests per interval.
// Stale visitors are swept every minute until ctx is done.
func NewRateLimiter(ctx context.Context, rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.sweep()
			}
		}
	}()
	return rl
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// Allow checks if a request from the given IP is allowed.
// PRE: ip is non-empty
// POST: Returns true if within rate limit, false if exceeded
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	refill := int(now.Sub(v.lastSeen)/rl.interval) * rl.rate
	v.tokens = min(v.tokens+refill, rl.rate)
	v.lastSeen = now

	if v.tokens <= 0 {
		slog.Warn("rate_limit_exceeded", "ip", ip)
		return false
	}
	v.tokens--
	return true
}

// RateLimit returns middleware that limits requests per client IP.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders adds OWASP recommended headers. The portal serves JSON
// only, so the policy denies every source.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRF returns middleware that protects against CSRF attacks.
// authKey must be 32 bytes. Only requests a cross-site form could send
// (form, multipart, text/plain or no content type) need a valid token;
// JSON and CSV bodies require a CORS preflight and are exempt.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	csrfProtect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)

	return func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !formLike(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func formLike(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "", "application/x-www-form-urlencoded", "multipart/form-data", "text/plain":
		return true
	}
	return false
}

// Chain wraps h with each middleware in turn; the last one listed is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
