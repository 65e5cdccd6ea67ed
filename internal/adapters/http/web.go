package web

import (
	"context"
	"net/http"
	"time"

	"athleteportal/internal/adapters/email"
	"athleteportal/internal/adapters/http/middleware"
	"athleteportal/internal/adapters/http/perf"
	accountStore "athleteportal/internal/adapters/storage/account"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	featureStore "athleteportal/internal/adapters/storage/feature"
	reportStore "athleteportal/internal/adapters/storage/report"
	"athleteportal/internal/application/workingset"
	"athleteportal/internal/domain/entitlement"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	AthleteStore athleteStore.Store
	FeatureStore featureStore.Store
	ReportStore  reportStore.Store
}

// Options configures NewMux. Zero values fall back to safe defaults except
// CSRFKey, which must be 32 bytes.
type Options struct {
	Namespace      string
	Policy         *entitlement.Policy
	WorkingSet     *workingset.WorkingSet
	Sender         email.Sender
	Collector      *perf.Collector
	HealthCheck    func(ctx context.Context) error
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	SlowRequest    time.Duration
	RateLimit      int // requests per second per IP
}

// DefaultNamespace is the roster namespace used when none is configured.
const DefaultNamespace = "default"

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by NewMux)
var emailSender email.Sender

// Resolution state shared by every handler (set by NewMux)
var (
	roster      *workingset.WorkingSet
	policy      *entitlement.Policy
	namespace   string
	healthCheck func(ctx context.Context) error
)

// NewMux wires HTTP handlers for the portal.
// The rate limiter's sweeper stops when ctx is done.
func NewMux(ctx context.Context, s *Stores, opts Options) http.Handler {
	stores = s
	perfCollector = opts.Collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.SecureCookies

	emailSender = opts.Sender
	if emailSender == nil {
		emailSender = email.NewNoopSender()
	}
	roster = opts.WorkingSet
	if roster == nil {
		roster = workingset.New(nil)
	}
	policy = opts.Policy
	if policy == nil {
		policy = entitlement.DefaultPolicy()
	}
	namespace = opts.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	healthCheck = opts.HealthCheck

	rate := opts.RateLimit
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	mux := http.NewServeMux()
	registerRoutes(mux)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
}
