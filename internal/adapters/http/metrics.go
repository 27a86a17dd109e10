package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the transport-level instrumentation. One counter per request
// outcome and a latency histogram over completed pipelines.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics builds the metric set and registers it on reg. A nil registerer
// falls back to the default one; passing a fresh registry keeps tests
// isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xqsim_trace_requests_total",
			Help: "Trace requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xqsim_trace_duration_seconds",
			Help:    "End-to-end trace pipeline latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.duration.Observe(elapsed.Seconds())
	}
}
