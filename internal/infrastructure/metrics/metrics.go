// Package metrics defines and registers the custom Prometheus metrics shared
// by the storefront services. It is the single source of truth for metric
// names, labels and help strings.
//
// All collectors are registered with the default registry at package init via
// promauto; the services expose them on /metrics next to the echo request
// metrics. The core services see them only through the recorders at the end
// of this file, which satisfy the ports.*Metrics interfaces.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/storefront/internal/core/ports"
)

const namespace = "storefront"

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts token requests.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of token requests, by result.",
	},
	[]string{"result"},
)

// AccountsRegisteredTotal counts successful registrations.
var AccountsRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered.",
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// StockAdjustmentsTotal counts stock adjustment attempts.
// Label:
//   - result: "applied", "insufficient" or "not_found"
var StockAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_total",
		Help:      "Total number of stock adjustments, by result.",
	},
	[]string{"result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts orders persisted by the placement workflow.
var OrdersPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed.",
	},
)

// OrderFailuresTotal counts placements that did not produce an order.
// Label:
//   - reason: "product_not_found", "insufficient_stock", "catalog_unavailable",
//     "persist_failed" or "invalid_input"
var OrderFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_failures_total",
		Help:      "Total number of failed order placements, by reason.",
	},
	[]string{"reason"},
)

// OrderReplaysTotal counts placements answered from an earlier order with the
// same Idempotency-Key.
var OrderReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_replays_total",
		Help:      "Total number of idempotent order replays.",
	},
)

// StockCompensationsTotal counts stock restores issued after a failed placement.
// Label:
//   - result: "restored" or "failed"
var StockCompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_compensations_total",
		Help:      "Total number of compensating stock restores, by result.",
	},
	[]string{"result"},
)

// OrderPlacementDuration measures the placement workflow end to end.
// Label:
//   - outcome: "placed", "replayed" or "failed"
var OrderPlacementDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_placement_duration_seconds",
		Help:      "Duration of order placement including catalog calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of order events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of order events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events handled by the dispatcher.
// Label:
//   - result: "stored", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of order audit events, by result.",
	},
	[]string{"result"},
)

// ── Recorders ─────────────────────────────────────────────────────────────────

var (
	_ ports.AccountMetrics = Accounts{}
	_ ports.CatalogMetrics = Catalog{}
	_ ports.OrderMetrics   = Orders{}
)

// Accounts feeds LoginsTotal and AccountsRegisteredTotal.
type Accounts struct{}

func (Accounts) Registered() { AccountsRegisteredTotal.Inc() }

func (Accounts) Login(success bool) {
	LoginsTotal.WithLabelValues(outcome(success, "success", "failure")).Inc()
}

// Catalog feeds StockAdjustmentsTotal.
type Catalog struct{}

func (Catalog) StockAdjusted(result string) {
	StockAdjustmentsTotal.WithLabelValues(result).Inc()
}

// Orders feeds the order placement and compensation collectors.
type Orders struct{}

func (Orders) Placed(d time.Duration) {
	OrdersPlacedTotal.Inc()
	OrderPlacementDuration.WithLabelValues("placed").Observe(d.Seconds())
}

func (Orders) Replayed(d time.Duration) {
	OrderReplaysTotal.Inc()
	OrderPlacementDuration.WithLabelValues("replayed").Observe(d.Seconds())
}

func (Orders) Failed(reason string, d time.Duration) {
	OrderFailuresTotal.WithLabelValues(reason).Inc()
	OrderPlacementDuration.WithLabelValues("failed").Observe(d.Seconds())
}

func (Orders) Compensated(ok bool) {
	StockCompensationsTotal.WithLabelValues(outcome(ok, "restored", "failed")).Inc()
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
