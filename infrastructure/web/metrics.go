package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks upload outcomes for Prometheus. Each Metrics value owns its
// registry so tests never collide on global collector registration.
type Metrics struct {
	registry       *prometheus.Registry
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
}

// NewMetrics creates the upload metric collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidoer_uploads_total",
			Help: "Upload requests by outcome.",
		}, []string{"outcome"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidoer_upload_duration_seconds",
			Help:    "End-to-end upload handling time in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.uploadsTotal,
		m.uploadDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveUpload records one finished upload request.
func (m *Metrics) ObserveUpload(outcome string, elapsed time.Duration) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	m.uploadDuration.Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
