package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors served on /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BrochuresTotal      *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brochuregen_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brochuregen_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		BrochuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brochuregen_brochures_total",
			Help: "Brochure generations by result.",
		}, []string{"result"}), // ok, degraded, failed
	}
}

func (m *Metrics) observeBrochure(degraded bool, err error) {
	switch {
	case err != nil:
		m.BrochuresTotal.WithLabelValues("failed").Inc()
	case degraded:
		m.BrochuresTotal.WithLabelValues("degraded").Inc()
	default:
		m.BrochuresTotal.WithLabelValues("ok").Inc()
	}
}
