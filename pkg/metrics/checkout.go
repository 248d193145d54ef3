package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts hosted checkout sessions.
type CheckoutMetrics struct {
	sessions *prometheus.CounterVec
}

// NewCheckoutMetrics registers checkout counters on reg.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "sessions_total",
		Help:      "Checkout session attempts by ledger kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(sessions)
	return &CheckoutMetrics{sessions: sessions}
}

// SessionCreated counts a session that produced a pending record.
func (m *CheckoutMetrics) SessionCreated(kind string) {
	m.inc(kind, "created")
}

// SessionRejected counts an attempt refused before or by the gateway.
func (m *CheckoutMetrics) SessionRejected(kind, reason string) {
	m.inc(kind, normalizeLabel(reason))
}

func (m *CheckoutMetrics) inc(kind, outcome string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}
