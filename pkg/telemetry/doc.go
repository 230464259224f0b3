// Package telemetry groups the gateway's observability packages.
//
// # Components
//
//   - logging: slog setup with redaction and request correlation
//   - metrics: Prometheus collector for requests, upstream attempts and record writes
//   - tracing: OpenTelemetry spans for requests, upstream calls and attempts
//   - health: liveness and readiness endpoints
//
// Each subpackage is configured from the matching section of
// config.TelemetryConfig and wired together in pkg/server.
package telemetry
