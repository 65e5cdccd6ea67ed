package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"athleteportal/internal/domain/athlete"
)

// AthleteStoreForLoad reads one cached roster.
type AthleteStoreForLoad interface {
	List(ctx context.Context, namespace string) ([]athlete.Record, error)
}

// LoadRosterDeps holds dependencies for LoadRoster.
type LoadRosterDeps struct {
	AthleteStore AthleteStoreForLoad
	WorkingSet   RosterReplacer
}

// ExecuteLoadRoster restores the working set from the namespace cache.
// PRE: WorkingSet is non-nil
// POST: The working set holds the cached namespace, or is left untouched on error
// INVARIANT: An empty namespace yields an empty working set, not an error
func ExecuteLoadRoster(ctx context.Context, namespace string, deps LoadRosterDeps) (int, error) {
	records, err := deps.AthleteStore.List(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("load namespace %q: %w", namespace, err)
	}
	roster, err := athlete.NewRoster(records)
	if err != nil {
		return 0, fmt.Errorf("load namespace %q: %w", namespace, err)
	}
	deps.WorkingSet.Replace(roster)
	slog.Info("roster_loaded", "namespace", namespace, "athletes", roster.Len())
	return roster.Len(), nil
}
