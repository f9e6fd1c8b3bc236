package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Place handles POST /orders.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Replays the earlier order placed with the same key"
// @Param        body             body      placeOrderRequest  true   "Order lines"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	items := make([]ports.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	result, err := h.service.PlaceOrder(c.Request().Context(), ports.PlaceOrderInput{
		UserID:         req.UserID,
		Items:          items,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get("Idempotency-Key")),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toOrderResponse(result.Order))
}

// List handles GET /orders/:user_id.
//
// @Summary      List a user's orders
// @Tags         orders
// @Produce      json
// @Param        user_id  path      int  true  "User id"
// @Success      200      {array}   orderResponse
// @Failure      400      {object}  errorResponse
// @Router       /orders/{user_id} [get]
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}

	orders, err := h.service.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateStatus handles PUT /orders/:order_id/status?status=...
//
// @Summary      Set an order's status
// @Tags         orders
// @Produce      json
// @Param        order_id  path      int     true  "Order id"
// @Param        status    query     string  true  "New status (free text)"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /orders/{order_id}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	orderID, err := pathID(c, "order_id")
	if err != nil {
		return err
	}
	status := c.QueryParam("status")
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", domain.ErrInvalidInput)
	}

	if err := h.service.UpdateStatus(c.Request().Context(), orderID, status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Order status updated successfully"})
}
