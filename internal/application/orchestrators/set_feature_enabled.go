package orchestrators

import (
	"context"
	"log/slog"

	"athleteportal/internal/domain/feature"
)

// FeatureStoreForToggle reads and writes a single catalog entry.
type FeatureStoreForToggle interface {
	GetByKey(ctx context.Context, key string) (feature.Feature, error)
	Save(ctx context.Context, value feature.Feature) error
}

// SetFeatureEnabledInput flips the kill switch of one feature.
type SetFeatureEnabledInput struct {
	Key       string
	Enabled   bool
	ChangedBy string
}

// ExecuteSetFeatureEnabled toggles a catalog entry.
// PRE: Key exists in the catalog
// POST: Enabled is persisted; no other field changes
func ExecuteSetFeatureEnabled(ctx context.Context, input SetFeatureEnabledInput, store FeatureStoreForToggle) (feature.Feature, error) {
	f, err := store.GetByKey(ctx, input.Key)
	if err != nil {
		return feature.Feature{}, err
	}
	if f.Enabled == input.Enabled {
		return f, nil
	}
	f.Enabled = input.Enabled
	if err := store.Save(ctx, f); err != nil {
		return feature.Feature{}, err
	}
	slog.Info("feature_toggled", "key", f.Key, "enabled", f.Enabled, "by", input.ChangedBy)
	return f, nil
}
