package report

import (
	"context"

	domain "athleteportal/internal/domain/report"
)

// Store persists generated report reviews.
type Store interface {
	Save(ctx context.Context, value domain.Review) error
	GetByID(ctx context.Context, id string) (domain.Review, error)
	ListByAthlete(ctx context.Context, athleteID string, limit int) ([]domain.Review, error)
}
