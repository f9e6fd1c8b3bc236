package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names an entry in the order audit trail.
type OrderEventType string

const (
	OrderEventPlaced        OrderEventType = "order_placed"
	OrderEventStatusChanged OrderEventType = "status_changed"
)

// OrderEvent records something that happened to an order.
type OrderEvent struct {
	Type        OrderEventType
	OrderID     int64
	UserID      int64 // zero for status changes
	Status      string
	TotalAmount decimal.Decimal
	OccurredAt  time.Time
}
