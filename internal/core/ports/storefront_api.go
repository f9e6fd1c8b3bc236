package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// The interfaces below are the dashboard's HTTP view of the three services.

type AccountsAPI interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Token(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*domain.Account, error)
}

type CatalogAPI interface {
	ListProducts(ctx context.Context, input ListProductsInput) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type OrdersAPI interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]domain.Order, error)
}
