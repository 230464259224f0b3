package metrics

import (
	"time"

	"lexiclaire/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks client-facing requests.
//
// Metrics:
//   - lexiclaire_gateway_requests_total: request count by operation, status
//   - lexiclaire_gateway_request_duration_seconds: end-to-end latency
//   - lexiclaire_gateway_upload_size_bytes: buffered upload size
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadBytes     *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of client requests by operation and response status",
			},
			[]string{"operation", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of client requests in seconds, including retries",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"operation"},
		),

		uploadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upload_size_bytes",
				Help:      "Size of buffered document uploads in bytes",
				Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8), // 16KB to 256MB
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.uploadBytes,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
func (rm *RequestMetrics) RecordRequest(operation, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(operation, status).Inc()
	rm.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordUpload records the size of an upload.
func (rm *RequestMetrics) RecordUpload(operation string, bytes int64) {
	if bytes > 0 {
		rm.uploadBytes.WithLabelValues(operation).Observe(float64(bytes))
	}
}
