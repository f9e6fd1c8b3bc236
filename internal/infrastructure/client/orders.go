package client

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// OrdersClient calls the order service.
type OrdersClient struct {
	base
}

func NewOrdersClient(baseURL string, timeout time.Duration) *OrdersClient {
	return &OrdersClient{base: newBase(baseURL, timeout, ErrUnavailable)}
}

// PlaceOrder forwards the idempotency key so a retried checkout does not
// buy twice.
func (c *OrdersClient) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	payload := placeOrderDTO{UserID: in.UserID, Items: make([]orderItemDTO, 0, len(in.Items))}
	for _, it := range in.Items {
		payload.Items = append(payload.Items, orderItemDTO{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if in.IdempotencyKey != "" {
		header.Set("Idempotency-Key", in.IdempotencyKey)
	}

	var dto orderDTO
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/orders",
		body:        body,
		contentType: "application/json",
		header:      header,
	}, &dto)
	if err != nil {
		switch status, apiErr := statusOf(err); status {
		case http.StatusBadRequest:
			apiErr.kind = domain.ErrInvalidInput
		case http.StatusNotFound:
			apiErr.kind = domain.ErrProductNotFound
		}
		return nil, err
	}

	order := dto.toDomain()
	return &order, nil
}

func (c *OrdersClient) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var dtos []orderDTO
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders/" + strconv.FormatInt(userID, 10)}, &dtos)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}
