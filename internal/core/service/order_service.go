package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// reservation is a stock decrement already applied in the catalog.
type reservation struct {
	productID int64
	quantity  int
}

// OrderService runs the placement workflow against the catalog and the order
// store. Stock decrements are undone when a later step fails.
type OrderService struct {
	catalog ports.CatalogGateway
	repo    ports.OrderRepository
	events  ports.OrderEventPublisher
	logger  zerolog.Logger
	metrics ports.OrderMetrics
	now     func() time.Time
}

// NewOrderService accepts a nil publisher when no audit sink is configured.
func NewOrderService(
	catalog ports.CatalogGateway,
	repo ports.OrderRepository,
	events ports.OrderEventPublisher,
	logger zerolog.Logger,
) *OrderService {
	if events == nil {
		events = nopPublisher{}
	}
	return &OrderService{
		catalog: catalog,
		repo:    repo,
		events:  events,
		logger:  logger,
		metrics: nopMetrics{},
		now:     time.Now,
	}
}

// WithMetrics replaces the default no-op recorder.
func (s *OrderService) WithMetrics(m ports.OrderMetrics) *OrderService {
	s.metrics = m
	return s
}

// PlaceOrder fetches every product, checks stock for all of them, reserves
// stock line by line and finally persists the order. If an Idempotency-Key
// matches an earlier order, that order is returned without side effects.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	start := time.Now()

	if err := validatePlaceOrder(in); err != nil {
		s.fail(start, "invalid_input")
		return nil, err
	}

	if in.IdempotencyKey != "" {
		result, err := s.replay(ctx, start, in.IdempotencyKey)
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return result, err
		}
	}

	// 1. Look up every distinct product; quantities for the same product are summed.
	products := make(map[int64]*domain.Product, len(in.Items))
	requested := make(map[int64]int, len(in.Items))
	var productOrder []int64
	for _, item := range in.Items {
		if _, seen := products[item.ProductID]; !seen {
			p, err := s.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				s.fail(start, failureReason(err))
				return nil, fmt.Errorf("place order: %w", err)
			}
			products[item.ProductID] = p
			productOrder = append(productOrder, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	// 2. Check stock before touching anything.
	for _, id := range productOrder {
		p := products[id]
		if requested[id] > p.Stock {
			s.fail(start, "insufficient_stock")
			return nil, fmt.Errorf("place order: %w", &domain.InsufficientStockError{
				ProductID: id,
				Name:      p.Name,
				Requested: requested[id],
				Available: p.Stock,
			})
		}
	}

	// 3. Reserve. The catalog applies each decrement atomically, so a
	// concurrent purchase can still win the race here.
	reserved := make([]reservation, 0, len(productOrder))
	for _, id := range productOrder {
		if _, err := s.catalog.AdjustStock(ctx, id, -requested[id]); err != nil {
			var stockErr *domain.InsufficientStockError
			if errors.As(err, &stockErr) && stockErr.Name == "" {
				stockErr.Name = products[id].Name
			}
			s.compensate(ctx, reserved)
			s.fail(start, failureReason(err))
			return nil, fmt.Errorf("place order: reserve stock: %w", err)
		}
		reserved = append(reserved, reservation{productID: id, quantity: requested[id]})
	}

	// 4. Price the lines with the values read in step 1.
	lines := make([]domain.OrderLine, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: products[item.ProductID].Price,
		})
	}

	order := &domain.Order{
		UserID:         in.UserID,
		TotalAmount:    domain.OrderTotal(lines),
		Status:         domain.DefaultOrderStatus,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      s.now().UTC(),
		Items:          lines,
	}

	// 5. Persist header and lines in one transaction.
	if err := s.repo.Create(ctx, order); err != nil {
		s.compensate(ctx, reserved)
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			// A concurrent request with the same key committed first.
			result, rerr := s.replay(ctx, start, in.IdempotencyKey)
			if !errors.Is(rerr, domain.ErrOrderNotFound) {
				return result, rerr
			}
		}
		s.fail(start, "persist_failed")
		return nil, fmt.Errorf("place order: persist: %w", err)
	}

	s.metrics.Placed(time.Since(start))
	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("user_id", order.UserID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("lines", len(order.Items)).
		Msg("order placed")

	s.events.Publish(domain.OrderEvent{
		Type:        domain.OrderEventPlaced,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.CreatedAt,
	})

	return &ports.PlaceOrderResult{Order: order}, nil
}

// replay answers with the order already stored under key. It returns
// domain.ErrOrderNotFound untouched when there is none.
func (s *OrderService) replay(ctx context.Context, start time.Time, key string) (*ports.PlaceOrderResult, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return nil, err
	case err != nil:
		s.fail(start, "persist_failed")
		return nil, fmt.Errorf("place order: idempotency lookup: %w", err)
	}

	s.metrics.Replayed(time.Since(start))
	s.logger.Info().Str("idempotency_key", key).Int64("order_id", existing.ID).Msg("idempotent replay")
	return &ports.PlaceOrderResult{Order: existing, AlreadyExisted: true}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// UpdateStatus accepts any non-empty status; there are no transition rules.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%w: status is required", domain.ErrInvalidInput)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}

	s.logger.Info().Int64("order_id", orderID).Str("status", status).Msg("order status updated")
	s.events.Publish(domain.OrderEvent{
		Type:       domain.OrderEventStatusChanged,
		OrderID:    orderID,
		Status:     status,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// compensate restores reserved stock in reverse order. It runs on a context
// detached from the caller so a cancelled request still releases its stock.
func (s *OrderService) compensate(ctx context.Context, reserved []reservation) {
	ctx = context.WithoutCancel(ctx)
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if _, err := s.catalog.AdjustStock(ctx, r.productID, r.quantity); err != nil {
			s.metrics.Compensated(false)
			s.logger.Error().Err(err).
				Int64("product_id", r.productID).
				Int("quantity", r.quantity).
				Msg("failed to restore reserved stock")
			continue
		}
		s.metrics.Compensated(true)
		s.logger.Warn().Int64("product_id", r.productID).Int("quantity", r.quantity).Msg("reserved stock restored")
	}
}

func (s *OrderService) fail(start time.Time, reason string) {
	s.metrics.Failed(reason, time.Since(start))
}

func validatePlaceOrder(in ports.PlaceOrderInput) error {
	if in.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be greater than 0", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", domain.ErrInvalidInput)
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: product_id must be greater than 0", domain.ErrInvalidInput)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInput)
		}
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "catalog_unavailable"
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.OrderEvent) {}
