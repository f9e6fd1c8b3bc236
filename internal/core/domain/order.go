package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultOrderStatus is assigned to every newly placed order. Status is free
// text afterwards.
const DefaultOrderStatus = "pending"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateIdempotencyKey is returned by the order store when another
	// order already claimed the key.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// OrderLine is one purchased product. UnitPrice is the catalog price read
// when the order was placed.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// Subtotal returns UnitPrice × Quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate root persisted by the order store.
type Order struct {
	ID             int64
	UserID         int64
	TotalAmount    decimal.Decimal
	Status         string
	IdempotencyKey string
	CreatedAt      time.Time
	Items          []OrderLine
}

// OrderTotal sums the line subtotals, rounded to cents.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}
