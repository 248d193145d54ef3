package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts receipt and thank-you deliveries.
type NotificationMetrics struct {
	sent *prometheus.CounterVec
}

// NewNotificationMetrics registers notification counters on reg.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "deliveries_total",
		Help:      "Notification deliveries by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(sent)
	return &NotificationMetrics{sent: sent}
}

// Record counts one delivery attempt.
func (m *NotificationMetrics) Record(kind string, err error) {
	if m == nil || m.sent == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.sent.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}
