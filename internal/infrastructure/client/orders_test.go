package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

func TestOrdersClient_PlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "cart-7-1", r.Header.Get("Idempotency-Key"))

		var body placeOrderDTO
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Items[0].Quantity > 50 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Insufficient stock for product Wireless Mouse"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"user_id":7,"total_amount":59.98,"status":"pending","created_at":"2026-01-02T03:04:05Z",
			"items":[{"id":1,"product_id":1,"quantity":2,"price_per_unit":29.99}]}`))
	}))
	t.Cleanup(srv.Close)
	c := NewOrdersClient(srv.URL, time.Second)

	in := ports.PlaceOrderInput{
		UserID:         7,
		Items:          []ports.OrderItemInput{{ProductID: 1, Quantity: 2}},
		IdempotencyKey: "cart-7-1",
	}
	order, err := c.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("59.98")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("29.99")))

	in.Items[0].Quantity = 60
	_, err = c.PlaceOrder(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualError(t, err, "Insufficient stock for product Wireless Mouse")
}

func TestOrdersClient_ListOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/7", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":2,"user_id":7,"total_amount":10,"status":"paid","items":[]},
			{"id":1,"user_id":7,"total_amount":5,"status":"pending","items":[{"product_id":4,"quantity":1,"price_per_unit":5}]}]`))
	}))
	t.Cleanup(srv.Close)

	orders, err := NewOrdersClient(srv.URL, time.Second).ListOrders(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "paid", orders[0].Status)
	assert.Equal(t, int64(1), orders[1].Items[0].OrderID)
}

func TestOrdersClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Error communicating with product service"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewOrdersClient(srv.URL, time.Second).ListOrders(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}
