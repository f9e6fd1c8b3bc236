package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// OrderItemInput is one requested line of a purchase.
type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderInput is the DTO passed from the transport layer to OrderService.
type PlaceOrderInput struct {
	UserID         int64
	Items          []OrderItemInput
	IdempotencyKey string
}

// PlaceOrderResult wraps the persisted order.
type PlaceOrderResult struct {
	Order *domain.Order
	// AlreadyExisted is true when the Idempotency-Key matched an earlier order.
	AlreadyExisted bool
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	ListOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
}
