package orchestrators

import (
	"context"
	"log/slog"

	"athleteportal/internal/domain/feature"
)

// FeatureStoreForSeed inserts catalog entries that are not stored yet.
type FeatureStoreForSeed interface {
	SeedMissing(ctx context.Context, catalog []feature.Feature) (int, error)
}

// ExecuteSeedFeatures makes sure every default catalog entry exists.
// PRE: Database is initialized
// POST: Every DefaultCatalog key is stored; existing toggles are preserved
func ExecuteSeedFeatures(ctx context.Context, store FeatureStoreForSeed) error {
	added, err := store.SeedMissing(ctx, feature.DefaultCatalog())
	if err != nil {
		return err
	}
	if added > 0 {
		slog.Info("features_seeded", "added", added)
	}
	return nil
}
