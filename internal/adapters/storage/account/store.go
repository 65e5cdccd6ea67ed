package account

import (
	"context"
	"errors"

	domain "athleteportal/internal/domain/account"
)

// ErrNotFound is returned when no account matches.
var ErrNotFound = errors.New("account not found")

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
