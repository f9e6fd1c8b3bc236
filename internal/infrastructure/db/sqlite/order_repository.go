package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/99minutos/storefront/internal/core/domain"
)

// OrderRepository implements ports.OrderRepository on the orders store.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRow struct {
	ID             int64           `db:"id"`
	UserID         int64           `db:"user_id"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         string          `db:"status"`
	IdempotencyKey sql.NullString  `db:"idempotency_key"`
	CreatedAt      timestamp       `db:"created_at"`
}

type orderItemRow struct {
	ID           int64           `db:"id"`
	OrderID      int64           `db:"order_id"`
	ProductID    int64           `db:"product_id"`
	Quantity     int             `db:"quantity"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	CreatedAt    timestamp       `db:"created_at"`
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:             r.ID,
		UserID:         r.UserID,
		TotalAmount:    r.TotalAmount,
		Status:         r.Status,
		IdempotencyKey: r.IdempotencyKey.String,
		CreatedAt:      r.CreatedAt.Time(),
		Items:          []domain.OrderLine{},
	}
}

func (r orderItemRow) toDomain() domain.OrderLine {
	return domain.OrderLine{
		ID:        r.ID,
		OrderID:   r.OrderID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitPrice: r.PricePerUnit,
		CreatedAt: r.CreatedAt.Time(),
	}
}

const (
	orderColumns     = `id, user_id, total_amount, status, idempotency_key, created_at`
	orderItemColumns = `id, order_id, product_id, quantity, price_per_unit, created_at`
)

// Create writes the header and every line in one transaction and fills in
// the generated ids.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	createdAt := timestamp(o.CreatedAt)
	if o.CreatedAt.IsZero() {
		createdAt = nowTimestamp()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, total_amount, status, idempotency_key, created_at) VALUES (?, ?, ?, ?, ?)`,
		o.UserID, o.TotalAmount.InexactFloat64(), o.Status, nullableText(o.IdempotencyKey), createdAt,
	)
	if err != nil {
		if o.IdempotencyKey != "" && isUniqueViolation(err) {
			return domain.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		res, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price_per_unit, created_at) VALUES (?, ?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.UnitPrice.InexactFloat64(), createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item for order %d: %w", orderID, err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert order item for order %d: %w", orderID, err)
		}
		item.OrderID = orderID
		item.CreatedAt = createdAt.Time()
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	o.ID = orderID
	o.CreatedAt = createdAt.Time()
	return nil
}

func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order by idempotency key: %w", err)
	}

	orders := []domain.Order{row.toDomain()}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns orders newest first; ties on created_at fall back to id.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// attachItems loads the lines of every order in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}

	query, args, err := sqlx.In(`SELECT `+orderItemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("build order items query: %w", err)
	}

	var rows []orderItemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	for _, row := range rows {
		i := index[row.OrderID]
		orders[i].Items = append(orders[i].Items, row.toDomain())
	}
	return nil
}
