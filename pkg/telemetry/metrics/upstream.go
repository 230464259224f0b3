package metrics

import (
	"time"

	"lexiclaire/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the analysis service.
//
// Metrics:
//   - lexiclaire_gateway_upstream_attempts_total: attempts by operation, outcome
//   - lexiclaire_gateway_upstream_attempt_duration_seconds: per-attempt latency
//   - lexiclaire_gateway_upstream_retries_total: retry waits by operation
//   - lexiclaire_gateway_upstream_retry_delay_seconds_total: time spent waiting
//   - lexiclaire_gateway_upstream_wakes_total: wake probes by result
//   - lexiclaire_gateway_upstream_warm: 1 after a successful wake, 0 after a failed one
type UpstreamMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	retryDelay      *prometheus.CounterVec
	wakesTotal      *prometheus.CounterVec
	wakeDuration    prometheus.Histogram
	warm            prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_attempts_total",
				Help:      "Total number of upstream attempts by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_attempt_duration_seconds",
				Help:      "Duration of single upstream attempts in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"operation"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_retries_total",
				Help:      "Total number of retry waits by operation",
			},
			[]string{"operation"},
		),

		retryDelay: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_retry_delay_seconds_total",
				Help:      "Total time spent waiting between upstream attempts",
			},
			[]string{"operation"},
		),

		wakesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_wakes_total",
				Help:      "Total number of wake probes by result",
			},
			[]string{"result"},
		),

		wakeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_wake_duration_seconds",
				Help:      "Duration of wake probes in seconds",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10},
			},
		),

		warm: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_warm",
				Help:      "Whether the last wake probe reached the upstream (1) or not (0)",
			},
		),
	}

	registry.MustRegister(
		um.attemptsTotal,
		um.attemptDuration,
		um.retriesTotal,
		um.retryDelay,
		um.wakesTotal,
		um.wakeDuration,
		um.warm,
	)

	return um
}

// RecordAttempt records one attempt.
func (um *UpstreamMetrics) RecordAttempt(operation, outcome string, elapsed time.Duration) {
	um.attemptsTotal.WithLabelValues(operation, outcome).Inc()
	um.attemptDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordDelay records one retry wait.
func (um *UpstreamMetrics) RecordDelay(operation string, delay time.Duration) {
	um.retriesTotal.WithLabelValues(operation).Inc()
	um.retryDelay.WithLabelValues(operation).Add(delay.Seconds())
}

// RecordWake records a wake probe.
func (um *UpstreamMetrics) RecordWake(result string, latency time.Duration) {
	um.wakesTotal.WithLabelValues(result).Inc()
	um.wakeDuration.Observe(latency.Seconds())
	if result == "ok" {
		um.warm.Set(1)
	} else {
		um.warm.Set(0)
	}
}
