package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// RegisterInput carries the fields accepted by POST /register.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	IsAdmin  bool
}

type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	// Authenticate checks the password and returns a signed bearer token.
	Authenticate(ctx context.Context, username, password string) (string, error)
	// Resolve validates a bearer token and loads the account it names.
	Resolve(ctx context.Context, token string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
