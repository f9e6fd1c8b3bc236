package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// ProductFilter selects a page of the catalog in storage order.
type ProductFilter struct {
	Search string // optional: case-insensitive substring of name or description
	Skip   int
	Limit  int
}

// ProductRepository defines persistence for catalog items.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	// AdjustStock applies delta in a single conditional statement and returns
	// the new stock. The row is left untouched when the result would be negative.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	Count(ctx context.Context) (int, error)
}
