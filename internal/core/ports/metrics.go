package ports

import "time"

// AccountMetrics records registration and token request outcomes.
type AccountMetrics interface {
	Registered()
	Login(success bool)
}

// CatalogMetrics records stock adjustment outcomes. Result is one of
// "applied", "insufficient" or "not_found".
type CatalogMetrics interface {
	StockAdjusted(result string)
}

// OrderMetrics records how order placements end and how long they took.
type OrderMetrics interface {
	Placed(d time.Duration)
	Replayed(d time.Duration)
	Failed(reason string, d time.Duration)
	Compensated(ok bool)
}
