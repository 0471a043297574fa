package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteCallMetrics records calls made to the CityCare REST API.
type RemoteCallMetrics struct {
	duration *prometheus.HistogramVec
	outcome  *prometheus.CounterVec
}

// NewRemoteCallMetrics registers the remote call metrics on the provided registerer.
func NewRemoteCallMetrics(reg prometheus.Registerer) *RemoteCallMetrics {
	if reg == nil {
		return &RemoteCallMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "citycare_remote_call_duration_seconds",
		Help:    "Duration of remote API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	outcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citycare_remote_calls_total",
		Help: "Remote API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	reg.MustRegister(duration, outcome)
	return &RemoteCallMetrics{
		duration: duration,
		outcome:  outcome,
	}
}

// Observe records one finished call. Outcome is "ok", "transport", "rejected" or "malformed".
func (m *RemoteCallMetrics) Observe(endpoint, outcome string, took time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.duration.WithLabelValues(endpoint).Observe(took.Seconds())
	m.outcome.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
