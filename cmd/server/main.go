package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"athleteportal/internal/adapters/email"
	web "athleteportal/internal/adapters/http"
	"athleteportal/internal/adapters/http/perf"
	"athleteportal/internal/adapters/storage"
	accountStore "athleteportal/internal/adapters/storage/account"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	featureStore "athleteportal/internal/adapters/storage/feature"
	reportStore "athleteportal/internal/adapters/storage/report"
	"athleteportal/internal/application/orchestrators"
	"athleteportal/internal/application/workingset"
	"athleteportal/internal/config"
	"athleteportal/internal/domain/entitlement"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(cfg, os.Stderr))
	if cfg.CSRFKeyGenerated {
		slog.Warn("csrf_key_generated", "hint", "set PORTAL_CSRF_KEY so sessions survive restarts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		AccountStore: accountStore.NewSQLiteStore(timedDB),
		AthleteStore: athleteStore.NewSQLiteStore(timedDB),
		FeatureStore: featureStore.NewSQLiteStore(timedDB),
		ReportStore:  reportStore.NewSQLiteStore(timedDB),
	}

	seedDeps := orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := orchestrators.ExecuteSeedFeatures(ctx, stores.FeatureStore); err != nil {
		return fmt.Errorf("seed features: %w", err)
	}

	ws := workingset.New(nil)
	if _, err := orchestrators.ExecuteLoadRoster(ctx, cfg.Namespace, orchestrators.LoadRosterDeps{
		AthleteStore: stores.AthleteStore,
		WorkingSet:   ws,
	}); err != nil {
		return err
	}

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	sender := email.NewSender(cfg.ResendKey, cfg.ResendFrom)
	if cfg.ResendKey == "" && cfg.IsProduction() {
		slog.Warn("email_disabled", "hint", "PORTAL_RESEND_KEY is not set; reports will not be emailed")
	}

	handler := web.NewMux(ctx, stores, web.Options{
		Namespace:      cfg.Namespace,
		Policy:         policy,
		WorkingSet:     ws,
		Sender:         sender,
		Collector:      collector,
		HealthCheck:    timedDB.Ping,
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		SlowRequest:    cfg.SlowRequest,
		RateLimit:      cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"namespace", cfg.Namespace,
			"schema", storage.LatestSchemaVersion(),
			"athletes", ws.Current().Len(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadPolicy picks the tier policy: a TOML file when configured, otherwise
// the built-in categories with any configured admin identities.
func loadPolicy(cfg config.Config) (*entitlement.Policy, error) {
	if cfg.PolicyFile != "" {
		p, err := config.LoadPolicy(cfg.PolicyFile, cfg.ResolverAdminEmails...)
		if err != nil {
			return nil, err
		}
		slog.Info("policy_loaded", "path", cfg.PolicyFile, "categories", len(p.Categories()))
		return p, nil
	}
	if len(cfg.ResolverAdminEmails) > 0 {
		return entitlement.NewPolicy(entitlement.DefaultCategories(), cfg.ResolverAdminEmails...), nil
	}
	return entitlement.DefaultPolicy(), nil
}
