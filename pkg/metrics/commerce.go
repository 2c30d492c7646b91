package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "cartline"

// Cart mutation labels.
const (
	CartOpAdd    = "add"
	CartOpRemove = "remove"
	CartOpClear  = "clear"
)

// CommerceMetrics counts business events: cart mutations, placed orders and status transitions.
type CommerceMetrics struct {
	cartMutations    *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	orderTransitions *prometheus.CounterVec
}

func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Committed cart mutations by operation.",
	}, []string{"op"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders placed from a cart.",
	})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Order status changes by source and target status.",
	}, []string{"from", "to"})
	reg.MustRegister(cartMutations, ordersCreated, orderTransitions)
	return &CommerceMetrics{
		cartMutations:    cartMutations,
		ordersCreated:    ordersCreated,
		orderTransitions: orderTransitions,
	}
}

func (c *CommerceMetrics) IncCartMutation(op string) {
	if c == nil || c.cartMutations == nil {
		return
	}
	c.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CommerceMetrics) IncOrderCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

func (c *CommerceMetrics) IncOrderTransition(from, to string) {
	if c == nil || c.orderTransitions == nil {
		return
	}
	c.orderTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
