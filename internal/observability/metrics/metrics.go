package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HoneypotMetrics exposes counters/histograms for the honeypot turn pipeline
// and the outbound callback.
type HoneypotMetrics struct {
	turnsTotal           *prometheus.CounterVec
	classificationsTotal *prometheus.CounterVec
	fallbacksTotal       *prometheus.CounterVec
	callbacksTotal       *prometheus.CounterVec
	callbackLatency      *prometheus.HistogramVec
	rateLimitedTotal     *prometheus.CounterVec
}

func NewHoneypotMetrics(reg prometheus.Registerer) *HoneypotMetrics {
	m := &HoneypotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Total processed inbound messages by reply persona",
		}, []string{"persona"}),
		classificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "classifications_total",
			Help:      "Total scam classifications by verdict",
		}, []string{"verdict", "degraded"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "gateway",
			Name:      "fallbacks_total",
			Help:      "Total gateway calls that degraded to a fallback value",
		}, []string{"operation"}),
		callbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "reports_total",
			Help:      "Total final-result callbacks by outcome",
		}, []string{"status"}),
		callbackLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of final-result callback deliveries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter",
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.classificationsTotal, m.fallbacksTotal, m.callbacksTotal, m.callbackLatency, m.rateLimitedTotal)
	return m
}

func (m *HoneypotMetrics) ObserveTurn(persona string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(persona).Inc()
}

func (m *HoneypotMetrics) ObserveClassification(isScam, degraded bool) {
	if m == nil {
		return
	}
	verdict := "benign"
	if isScam {
		verdict = "scam"
	}
	m.classificationsTotal.WithLabelValues(verdict, strconv.FormatBool(degraded)).Inc()
}

func (m *HoneypotMetrics) ObserveFallback(operation string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(operation).Inc()
}

// ObserveCallback records a callback outcome (delivered, failed, enqueue_failed).
// Latency is only recorded for attempted deliveries.
func (m *HoneypotMetrics) ObserveCallback(status string, seconds float64) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(status).Inc()
	if seconds > 0 {
		m.callbackLatency.WithLabelValues(status).Observe(seconds)
	}
}

func (m *HoneypotMetrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(route).Inc()
}
