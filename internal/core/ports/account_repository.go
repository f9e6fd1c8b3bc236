package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// AccountRepository defines persistence for user accounts.
type AccountRepository interface {
	// Create inserts the account and returns it with its assigned id.
	// Returns domain.ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}
