package feature

import (
	"context"

	domain "athleteportal/internal/domain/feature"
)

// Store persists the dashboard feature catalog.
type Store interface {
	GetByKey(ctx context.Context, key string) (domain.Feature, error)
	List(ctx context.Context) ([]domain.Feature, error)
	Save(ctx context.Context, value domain.Feature) error
	SeedMissing(ctx context.Context, catalog []domain.Feature) (int, error)
}
