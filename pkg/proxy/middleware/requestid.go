package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"lexiclaire/gateway/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength caps client supplied IDs before they reach logs and records.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns a request ID to each request and adds it to the
// context and response headers. A well-formed client supplied X-Request-ID is
// reused; anything else is replaced with a UUID v4.
//
// The ID is stored with logging.WithRequestID so that every log line written
// with the request context carries it, and the result record is keyed by it.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts short IDs of visible ASCII characters.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
