// Package server wires the gateway's components together and serves the
// client-facing HTTP API.
//
// NewApp builds every long-lived component from the configuration, in
// dependency order:
//
//	logger -> metrics -> tracer -> gateway client -> results store
//	       -> recorder -> retention pruner -> orchestrator -> health checks
//
// NewServer mounts the API on top of an App:
//
//	POST /api/analyze   POST /api/compare   POST /api/chat   POST /api/wake
//	GET  /health        GET  /ready         GET  /version    GET  /metrics
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    return err
//	}
//	app, err := server.NewApp(cfg, server.BuildInfo{Version: version})
//	if err != nil {
//	    return err
//	}
//	defer app.Close(context.Background())
//
//	if err := app.Start(ctx); err != nil {
//	    return err
//	}
//	return server.NewServer(app).Start(ctx)
//
// # Readiness
//
// /ready pings the results store (required) and reports upstream warmth. A
// cold Analysis Backend only degrades readiness unless
// telemetry.health.require_warm_upstream is set, because requests against a
// cold backend still succeed once the retries have woken it.
//
// # Shutdown
//
// Start returns after ctx is cancelled and in-flight requests have finished
// or server.shutdown_timeout has passed. Closing the App afterwards flushes
// pending result records.
package server
