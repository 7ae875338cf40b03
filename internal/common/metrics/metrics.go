// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_completed_total",
			Help: "Total number of purchases committed end to end",
		},
	)

	PurchasesDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_denied_total",
			Help: "Total number of purchase attempts denied before the provider call",
		},
		[]string{"reason"},
	)

	PurchasesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_failed_total",
			Help: "Total number of purchase attempts failed on infrastructure errors",
		},
		[]string{"error_code"},
	)

	LockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_lock_contention_total",
			Help: "Total number of lock acquisitions rejected because a purchase was in flight",
		},
	)

	OrphanOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_orphan_outcomes_total",
			Help: "Terminal orphan recovery outcomes",
		},
		[]string{"outcome"},
	)

	AuditWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_audit_write_failures_total",
			Help: "Audit events that could not be persisted and fell back to local logging",
		},
		[]string{"sink"},
	)

	CheckoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "purchase_checkout_duration_seconds",
			Help: "Duration of the checkout pipeline in seconds",
		},
		[]string{"status"},
	)
)
