package metrics

import "github.com/prometheus/client_golang/prometheus"

// GroupPurchaseMetrics tracks pool activity and contention.
type GroupPurchaseMetrics struct {
	joins       prometheus.Counter
	leaves      prometheus.Counter
	transitions *prometheus.CounterVec
	conflicts   prometheus.Counter
}

// NewGroupPurchaseMetrics registers the purchase metrics on the provided registerer.
func NewGroupPurchaseMetrics(reg prometheus.Registerer) *GroupPurchaseMetrics {
	if reg == nil {
		return &GroupPurchaseMetrics{}
	}
	joins := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_purchase_joins_total",
		Help: "Successful join operations.",
	})
	leaves := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_purchase_leaves_total",
		Help: "Successful leave operations.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_purchase_transitions_total",
		Help: "Status transitions by resulting status.",
	}, []string{"status"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_purchase_version_conflicts_total",
		Help: "Optimistic concurrency conflicts retried internally.",
	})
	reg.MustRegister(joins, leaves, transitions, conflicts)
	return &GroupPurchaseMetrics{
		joins:       joins,
		leaves:      leaves,
		transitions: transitions,
		conflicts:   conflicts,
	}
}

// IncJoin increments the join counter.
func (m *GroupPurchaseMetrics) IncJoin() {
	if m == nil || m.joins == nil {
		return
	}
	m.joins.Inc()
}

// IncLeave increments the leave counter.
func (m *GroupPurchaseMetrics) IncLeave() {
	if m == nil || m.leaves == nil {
		return
	}
	m.leaves.Inc()
}

// IncTransition records a transition into the given status.
func (m *GroupPurchaseMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.transitions.WithLabelValues(status).Inc()
}

// IncConflict records a version conflict retry.
func (m *GroupPurchaseMetrics) IncConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}
