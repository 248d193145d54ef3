package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// WebhookMetrics tracks gateway event processing.
type WebhookMetrics struct {
	events       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	compensation prometheus.Counter
}

// NewWebhookMetrics registers webhook metrics on reg.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "processing_seconds",
		Help:      "Time spent reconciling a webhook event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})
	compensation := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "compensations_total",
		Help:      "Stock decrements reverted because they drove stock negative.",
	})
	reg.MustRegister(events, duration, compensation)
	return &WebhookMetrics{events: events, duration: duration, compensation: compensation}
}

// Observe records the outcome and latency of one event.
func (m *WebhookMetrics) Observe(eventType, outcome string, d time.Duration) {
	if m == nil || m.events == nil {
		return
	}
	eventType = normalizeLabel(eventType)
	m.events.WithLabelValues(eventType, outcome).Inc()
	m.duration.WithLabelValues(eventType).Observe(d.Seconds())
}

// IncCompensation counts a reverted oversell.
func (m *WebhookMetrics) IncCompensation() {
	if m == nil || m.compensation == nil {
		return
	}
	m.compensation.Inc()
}
