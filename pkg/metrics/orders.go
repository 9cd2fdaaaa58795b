package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order placements and fulfillment transitions.
type OrderMetrics struct {
	placed      prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders created from confirmed checkouts.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Fulfillment status transitions applied to orders.",
	}, []string{"from", "to"})
	reg.MustRegister(placed, transitions)
	return &OrderMetrics{placed: placed, transitions: transitions}
}

// IncPlaced increments the placed-orders counter.
func (o *OrderMetrics) IncPlaced() {
	if o == nil || o.placed == nil {
		return
	}
	o.placed.Inc()
}

// IncTransition records a fulfillment transition between two statuses.
func (o *OrderMetrics) IncTransition(from, to string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}
