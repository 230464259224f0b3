// Package logging configures the process-wide structured logger.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text, and console output
//   - Redaction of credentials, contact details, and document content
//   - Request correlation: request_id, operation, trace_id, span_id
//   - A level that can be changed at runtime (config hot reload)
//
// Components never hold a *Logger. They derive their logger from
// slog.Default() with a "component" attribute, and the gateway installs
// this package's handler as the default at startup:
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "request accepted") // includes request_id
//
// # Redaction
//
// With RedactPII enabled:
//
//   - Attributes named document, question, analyzed_text, body, or content
//     are replaced with "[redacted]"
//   - Credential keys (token, password, authorization, ...) keep a 4 char prefix
//   - String values are scrubbed for API keys, bearer tokens, emails,
//     SSNs, card numbers, and phone numbers
package logging
