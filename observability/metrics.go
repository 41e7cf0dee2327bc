// Package observability provides the Prometheus instrumentation for the
// pipeline and the watcher.
//
// All metrics live on a private registry, so tests and multiple instances
// never collide with the global default registry. Expose them by mounting
// [Metrics.Handler] on the diagnostics router.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counter set for one scribe process.
type Metrics struct {
	registry *prometheus.Registry

	filesProcessed  *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	watchEvents     *prometheus.CounterVec
}

// NewMetrics creates and registers the scribe metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	filesProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scribe",
			Name:      "files_processed_total",
			Help:      "Total processed files by document type and status.",
		},
		[]string{"type", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scribe",
			Name:      "processing_duration_seconds",
			Help:      "File processing duration in seconds by document type.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)
	watchEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scribe",
			Name:      "watch_events_total",
			Help:      "Filesystem events seen by the watcher, by outcome.",
		},
		[]string{"result"},
	)

	registry.MustRegister(filesProcessed, processDuration, watchEvents)

	return &Metrics{
		registry:        registry,
		filesProcessed:  filesProcessed,
		processDuration: processDuration,
		watchEvents:     watchEvents,
	}
}

// Handler returns the /metrics endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProcessed records one pipeline outcome. docType may be "" when the
// input never resolved to a type; it is reported as "unknown".
func (m *Metrics) ObserveProcessed(docType string, duration time.Duration, err error) {
	if docType == "" {
		docType = "unknown"
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.filesProcessed.WithLabelValues(docType, status).Inc()
	m.processDuration.WithLabelValues(docType).Observe(duration.Seconds())
}

// ObserveWatchEvent counts one watcher event outcome ("scheduled", "skipped"
// or "dropped"). Wire it to the watcher's OnEvent hook.
func (m *Metrics) ObserveWatchEvent(result string) {
	m.watchEvents.WithLabelValues(result).Inc()
}
