package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if pair.GetValue() != want {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestHoneypotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHoneypotMetrics(reg)

	m.ObserveTurn("engaged")
	m.ObserveTurn("engaged")
	m.ObserveTurn("neutral")
	m.ObserveClassification(true, false)
	m.ObserveClassification(false, true)
	m.ObserveFallback("classify")
	m.ObserveCallback("delivered", 0.25)
	m.ObserveCallback("enqueue_failed", 0)
	m.ObserveRateLimited("/analyze")

	if got := findMetric(t, reg, "honeypot_engine_turns_total", map[string]string{"persona": "engaged"}).GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 engaged turns, got %v", got)
	}
	if got := findMetric(t, reg, "honeypot_engine_classifications_total", map[string]string{"verdict": "benign", "degraded": "true"}).GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 degraded benign classification, got %v", got)
	}
	if got := findMetric(t, reg, "honeypot_callback_reports_total", map[string]string{"status": "enqueue_failed"}).GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 enqueue failure, got %v", got)
	}
	if got := findMetric(t, reg, "honeypot_callback_delivery_latency_seconds", map[string]string{"status": "delivered"}).GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("expected one latency sample, got %d", got)
	}
	if got := findMetric(t, reg, "honeypot_http_rate_limited_total", map[string]string{"route": "/analyze"}).GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected one rate limited request, got %v", got)
	}
}

func TestHoneypotMetricsNilSafe(t *testing.T) {
	var m *HoneypotMetrics
	m.ObserveTurn("engaged")
	m.ObserveClassification(true, false)
	m.ObserveFallback("extract")
	m.ObserveCallback("failed", 0.1)
	m.ObserveRateLimited("/analyze")
}
