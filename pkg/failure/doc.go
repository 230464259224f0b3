// Package failure defines the closed failure taxonomy of the gateway and the
// classifier that decides whether an upstream failure may be retried.
//
// Every error the gateway surfaces to a client is a *Error carrying one Kind.
// The Kind determines the client-facing status code and message, so the
// mapping from failure to response is exhaustive and lives in one place.
//
// # Classification
//
// Classify is the single source of truth for retry eligibility. It maps a
// connection-level error or an upstream HTTP status to Transient or Permanent:
//
//   - Transient: connection reset or refused, broken pipe, timeouts, DNS
//     resolution failures, unexpected EOF, and HTTP 408, 502, 503, 504, 522, 524.
//   - Permanent: every other 4xx/5xx status, request construction failures,
//     context cancellation, and anything unrecognized.
//
// Connection refused is treated as Transient because a cold backend is not
// listening until its container finishes starting.
//
// # Usage
//
//	if failure.Classify(err) == failure.Transient {
//		// schedule another attempt
//	}
//
//	var fe *failure.Error
//	if errors.As(err, &fe) {
//		writeJSON(w, fe.ClientStatus(), fe.ClientMessage())
//	}
package failure
