package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// CatalogGateway is the order service's view of the product service.
// Transport failures are reported wrapping domain.ErrCatalogUnavailable.
type CatalogGateway interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}
