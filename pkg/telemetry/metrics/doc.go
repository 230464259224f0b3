// Package metrics provides Prometheus metrics for the Lexiclaire gateway.
//
// # Overview
//
// A single Collector owns a registry and implements the metric sinks of
// the gateway client (attempts, retry waits, wake probes), the
// orchestrator (requests, upload sizes) and the results recorder (store
// writes).
//
// # Metrics
//
//   - Request Metrics: request count by operation and status, latency, upload size
//   - Upstream Metrics: attempts by outcome, retry waits, wake probes, warm gauge
//   - Results Metrics: store writes by result and write latency
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	client, err := gateway.New(gwCfg, gateway.WithMetrics(collector))
//	rec := recorder.NewRecorder(store, recCfg, recorder.WithMetrics(collector))
//	orch := orchestrator.New(client, rec, orchCfg, orchestrator.WithMetrics(collector))
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
