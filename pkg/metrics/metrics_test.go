package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsExportsRunsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.ObserveDuration("checkout-expiry", 250*time.Millisecond)
	m.IncSuccess("checkout-expiry")
	m.IncFailure("checkout-expiry")
	m.AddExpired("order", 3)
	m.AddExpired("donation", 0)

	mfs := gather(t, reg)
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_cron_job_runs_total", map[string]string{"job": "checkout-expiry", "outcome": "success"}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_cron_job_runs_total", map[string]string{"job": "checkout-expiry", "outcome": "failure"}))
	require.Equal(t, 3.0, counterValue(t, mfs, "bananameow_cron_records_expired_total", map[string]string{"kind": "order"}))

	hist := findMetric(t, mfs, "bananameow_cron_job_duration_seconds", map[string]string{"job": "checkout-expiry"})
	require.Greater(t, hist.GetHistogram().GetSampleSum(), 0.0)
}

func TestWebhookMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.Observe("checkout.session.completed", OutcomeApplied, 10*time.Millisecond)
	m.Observe("checkout.session.completed", OutcomeDuplicate, time.Millisecond)
	m.Observe("", OutcomeIgnored, time.Millisecond)
	m.IncCompensation()

	mfs := gather(t, reg)
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_webhook_events_total", map[string]string{"type": "checkout.session.completed", "outcome": OutcomeApplied}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_webhook_events_total", map[string]string{"type": "unknown", "outcome": OutcomeIgnored}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_inventory_compensations_total", nil))
}

func TestCheckoutAndNotificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	checkout := NewCheckoutMetrics(reg)
	notifications := NewNotificationMetrics(reg)

	checkout.SessionCreated("order")
	checkout.SessionRejected("order", "insufficient_inventory")
	notifications.Record("order_receipt", nil)
	notifications.Record("order_receipt", errors.New("smtp down"))

	mfs := gather(t, reg)
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_checkout_sessions_total", map[string]string{"kind": "order", "outcome": "created"}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_checkout_sessions_total", map[string]string{"kind": "order", "outcome": "insufficient_inventory"}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_notifications_deliveries_total", map[string]string{"kind": "order_receipt", "outcome": "sent"}))
	require.Equal(t, 1.0, counterValue(t, mfs, "bananameow_notifications_deliveries_total", map[string]string{"kind": "order_receipt", "outcome": "failed"}))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var webhook *WebhookMetrics
	var checkout *CheckoutMetrics
	var notifications *NotificationMetrics
	var cron *CronJobMetrics

	require.NotPanics(t, func() {
		webhook.Observe("x", OutcomeApplied, time.Second)
		webhook.IncCompensation()
		checkout.SessionCreated("order")
		notifications.Record("order_receipt", nil)
		cron.IncSuccess("job")
		NewWebhookMetrics(nil).Observe("x", OutcomeFailed, time.Second)
	})
}

func TestNewRegistryGathers(t *testing.T) {
	_, err := NewRegistry().Gather()
	require.NoError(t, err)
}

func gather(t *testing.T, reg *prometheus.Registry) []*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	return mfs
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
