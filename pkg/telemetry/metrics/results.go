package metrics

import (
	"time"

	"lexiclaire/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResultsMetrics tracks writes to the results store.
//
// Metrics:
//   - lexiclaire_gateway_results_writes_total: writes by result ("ok", "error")
//   - lexiclaire_gateway_results_write_duration_seconds: write latency
type ResultsMetrics struct {
	writesTotal   *prometheus.CounterVec
	writeDuration prometheus.Histogram
}

// NewResultsMetrics creates and registers results metrics with the provided registry.
func NewResultsMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResultsMetrics {
	rm := &ResultsMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "results_writes_total",
				Help:      "Total number of results-store writes by result",
			},
			[]string{"result"},
		),

		writeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "results_write_duration_seconds",
				Help:      "Duration of results-store writes in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}

	registry.MustRegister(rm.writesTotal, rm.writeDuration)

	return rm
}

// RecordWrite records one write.
func (rm *ResultsMetrics) RecordWrite(result string, latency time.Duration) {
	rm.writesTotal.WithLabelValues(result).Inc()
	rm.writeDuration.Observe(latency.Seconds())
}
