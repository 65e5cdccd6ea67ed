package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Addr                string
	DBPath              string
	Env                 string
	Namespace           string
	AdminEmail          string
	AdminPassword       string
	ResolverAdminEmails []string
	PolicyFile          string
	ResendKey           string
	ResendFrom          string
	CSRFKey             []byte
	CSRFKeyGenerated    bool
	TrustedOrigins      []string
	SlowQuery           time.Duration
	SlowRequest         time.Duration
	RateLimit           int
	LogLevel            slog.Level
}

var (
	ErrCSRFKeyFormat   = errors.New("PORTAL_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrCSRFKeyRequired = errors.New("PORTAL_CSRF_KEY is required in production")
	ErrAdminPassword   = errors.New("PORTAL_ADMIN_PASSWORD is required in production")
)

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads a .env file when present, then the process environment.
// PRE: none
// POST: Returns a fully defaulted Config, or an error for settings that are
// malformed or missing in production
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	env := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Addr:           env("PORTAL_ADDR", ":8080"),
		DBPath:         env("PORTAL_DB_PATH", "portal.db"),
		Env:            strings.ToLower(env("PORTAL_ENV", EnvDevelopment)),
		Namespace:      env("PORTAL_NAMESPACE", "default"),
		AdminEmail:     env("PORTAL_ADMIN_EMAIL", "admin@portal.local"),
		AdminPassword:  env("PORTAL_ADMIN_PASSWORD", ""),
		ResendKey:      env("PORTAL_RESEND_KEY", ""),
		ResendFrom:     env("PORTAL_RESEND_FROM", "Athlete Portal <reports@portal.local>"),
		TrustedOrigins: splitList(env("PORTAL_TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080")),
		SlowQuery:      envMillis(env("PORTAL_SLOW_QUERY_MS", ""), 50*time.Millisecond),
		SlowRequest:    envMillis(env("PORTAL_SLOW_REQUEST_MS", ""), 200*time.Millisecond),
		RateLimit:      envInt(env("PORTAL_RATE_LIMIT", ""), 10),
		LogLevel:       parseLevel(env("PORTAL_LOG_LEVEL", "info")),
	}
	cfg.ResolverAdminEmails = splitList(env("PORTAL_RESOLVER_ADMIN_EMAIL", ""))
	cfg.PolicyFile = env("PORTAL_POLICY_FILE", "")

	if cfg.AdminPassword == "" {
		if cfg.IsProduction() {
			return Config{}, ErrAdminPassword
		}
		cfg.AdminPassword = "change me before launch"
	}

	keyHex := env("PORTAL_CSRF_KEY", "")
	switch {
	case keyHex != "":
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Config{}, ErrCSRFKeyFormat
		}
		cfg.CSRFKey = key
	case cfg.IsProduction():
		return Config{}, ErrCSRFKeyRequired
	default:
		cfg.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(cfg.CSRFKey); err != nil {
			return Config{}, fmt.Errorf("generate CSRF key: %w", err)
		}
		cfg.CSRFKeyGenerated = true
	}
	return cfg, nil
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envMillis(s string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

func envInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
