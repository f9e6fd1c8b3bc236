package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// OrderRepository defines persistence for orders and their lines.
type OrderRepository interface {
	// Create stores the header and every line atomically, filling in ids.
	Create(ctx context.Context, order *domain.Order) error
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// ListByUser returns the user's orders newest first with lines attached.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
}
