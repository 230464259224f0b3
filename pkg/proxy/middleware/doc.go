// Package middleware provides HTTP middleware for cross-cutting concerns of
// the gateway's client-facing API.
//
// # Middleware Chain
//
// The server composes the chain so that every log line carries the request ID:
//
//	handler = Recovery(RequestID(Logging(CORS(mux))))
//
// Order (outermost first):
//  1. Recovery: turn panics into 500 {"message": ...}
//  2. RequestID: assign or accept X-Request-ID, store it via logging.WithRequestID
//  3. Logging: one structured line per request with status and latency
//  4. CORS: headers for the browser front end, preflight answers
//
// Server spans are started per route by tracing.HTTPMiddleware so that each
// API operation gets its own span name.
//
// There is deliberately no request timeout middleware. Upstream attempts are
// bounded per operation by the gateway client and the server WriteTimeout
// bounds the whole exchange.
//
// # Request ID
//
// RequestIDMiddleware reuses a client supplied X-Request-ID of up to 128
// visible ASCII characters and otherwise generates a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The same ID keys the result record written for the request.
//
// # Recovery
//
// RecoveryMiddleware logs the panic with its stack and answers:
//
//	HTTP/1.1 500 Internal Server Error
//	Content-Type: application/json
//
//	{"message": "Internal server error."}
package middleware
