package athlete

import (
	"context"

	domain "athleteportal/internal/domain/athlete"
)

// Store is the durable cache for uploaded rosters, partitioned by namespace.
type Store interface {
	ReplaceNamespace(ctx context.Context, namespace string, records []domain.Record) error
	List(ctx context.Context, namespace string) ([]domain.Record, error)
	GetByID(ctx context.Context, namespace, id string) (domain.Record, error)
	GetByEmail(ctx context.Context, namespace, email string) (domain.Record, error)
	Namespaces(ctx context.Context) ([]NamespaceSummary, error)
}

// NamespaceSummary describes one cached roster.
type NamespaceSummary struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count"`
	UpdatedAt string `json:"updatedAt"`
}
