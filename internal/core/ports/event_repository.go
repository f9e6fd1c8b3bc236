package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// OrderEventRepository persists the order audit trail.
type OrderEventRepository interface {
	Insert(ctx context.Context, event *domain.OrderEvent) error
}

// OrderEventPublisher hands events to the audit pipeline without blocking
// the request that produced them.
type OrderEventPublisher interface {
	Publish(event domain.OrderEvent)
}
