// Package health provides liveness and readiness endpoints for the gateway.
//
// # Endpoints
//
//   - /health: liveness, always ok while the process serves HTTP
//   - /ready: readiness, runs the registered component checks
//   - /version: build information
//
// # Checks
//
// The server registers two checks:
//
//   - results_store: pings the results backend (required)
//   - upstream: the gateway client's warmth tracker (advisory unless
//     telemetry.health.require_warm_upstream is set)
//
// Checks run concurrently, each bounded by telemetry.health.check_timeout.
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("results_store", store.Ping)
//	checker.RegisterAdvisory("upstream", client.CheckWarm)
//
//	mux.HandleFunc("GET /health", checker.LivenessHandler())
//	mux.HandleFunc("GET /ready", checker.ReadinessHandler())
package health
