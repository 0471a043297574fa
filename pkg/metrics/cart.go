package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reconcile outcomes.
const (
	ReconcileApplied    = "applied"
	ReconcileStale      = "stale"
	ReconcileFailed     = "failed"
	ReconcileRolledBack = "rolled_back"
)

// CartMetrics counts cart reconciliation results.
type CartMetrics struct {
	reconcile *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	reconcile := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citycare_cart_reconcile_total",
		Help: "Cart reconciliation results by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(reconcile)
	return &CartMetrics{reconcile: reconcile}
}

// IncReconcile increments the counter for the outcome.
func (c *CartMetrics) IncReconcile(outcome string) {
	if c == nil || c.reconcile == nil {
		return
	}
	c.reconcile.WithLabelValues(normalizeLabel(outcome)).Inc()
}
