package metrics

import (
	"strconv"
	"time"

	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/retry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric the gateway exports. It satisfies
// the metric sinks of the gateway client, the orchestrator and the results
// recorder, so one instance is wired into all three.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	resultsMetrics  *ResultsMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry with the Go
// runtime and process collectors is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	client, err := gateway.New(gwCfg, gateway.WithMetrics(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	opts := *cfg
	if opts.Namespace == "" {
		opts.Namespace = config.DefaultMetricsNamespace
	}
	if opts.Subsystem == "" {
		opts.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(opts.RequestDurationBuckets) == 0 {
		opts.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	return &Collector{
		enabled:         config.BoolValue(cfg.Enabled, config.DefaultMetricsEnabled),
		registry:        registry,
		requestMetrics:  NewRequestMetrics(&opts, registry),
		upstreamMetrics: NewUpstreamMetrics(&opts, registry),
		resultsMetrics:  NewResultsMetrics(&opts, registry),
	}
}

// RecordRequest records one finished client request.
//
// Parameters:
//   - operation: "analyze", "chat", "compare"
//   - status: HTTP status returned to the client
//   - duration: time from accept to response
func (c *Collector) RecordRequest(operation string, status int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.requestMetrics.RecordRequest(operation, strconv.Itoa(status), duration)
}

// RecordUploadBytes records the size of a buffered upload.
func (c *Collector) RecordUploadBytes(operation string, bytes int64) {
	if !c.enabled {
		return
	}
	c.requestMetrics.RecordUpload(operation, bytes)
}

// OnAttempt records one upstream attempt and its outcome.
func (c *Collector) OnAttempt(r retry.Report) {
	if !c.enabled {
		return
	}
	c.upstreamMetrics.RecordAttempt(r.Op, r.Kind.String(), r.Elapsed)
}

// OnDelay records a retry wait before the given attempt.
func (c *Collector) OnDelay(op string, _ int, delay time.Duration) {
	if !c.enabled {
		return
	}
	c.upstreamMetrics.RecordDelay(op, delay)
}

// RecordWake records a wake probe. A successful probe marks the upstream warm.
func (c *Collector) RecordWake(result string, latency time.Duration) {
	if !c.enabled {
		return
	}
	c.upstreamMetrics.RecordWake(result, latency)
}

// RecordWrite records one results-store write.
func (c *Collector) RecordWrite(result string, latency time.Duration) {
	if !c.enabled {
		return
	}
	c.resultsMetrics.RecordWrite(result, latency)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
