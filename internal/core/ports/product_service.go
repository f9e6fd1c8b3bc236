package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/99minutos/storefront/internal/core/domain"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// ListProductsInput carries the query parameters of GET /products.
type ListProductsInput struct {
	Search string
	Skip   int
	Limit  int // 0 selects the default page size
}

type CatalogService interface {
	List(ctx context.Context, input ListProductsInput) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}
