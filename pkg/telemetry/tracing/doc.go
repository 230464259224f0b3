// Package tracing provides OpenTelemetry tracing for the Lexiclaire gateway.
//
// # Overview
//
// Each client request gets a server span (HTTPMiddleware). The gateway
// client nests one span per operation and one per attempt beneath it, so
// a cold-start analysis shows up as a parent with three attempt children
// and the retry waits between them. Trace context is forwarded to the
// analysis service in the traceparent header.
//
// # Sampling Strategies
//
//   - always: sample all traces (development)
//   - never: sample no root traces
//   - ratio: sample a fraction of root traces (production)
//
// Sampled parents are always honored.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	client, err := gateway.New(gwCfg, gateway.WithTracer(tracer))
//
// When tracing is disabled, New returns a noop tracer and spans cost
// nearly nothing.
package tracing
