package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments upstream calls.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	records  *prometheus.CounterVec
}

// NewMetrics registers on reg; nil keeps the collectors private (tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream insight calls by source, level and outcome.",
		}, []string{"source", "level", "outcome"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream call latency, retries included.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"source", "level"}),
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "upstream",
			Name:      "records_total",
			Help:      "Insight records received.",
		}, []string{"source", "level"}),
	}
}

func (m *Metrics) observe(source, level string, seconds float64, n int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(source, level, outcome).Inc()
	m.latency.WithLabelValues(source, level).Observe(seconds)
	m.records.WithLabelValues(source, level).Add(float64(n))
}
