package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/proxy"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// response with the standard {"message": ...} body. The panic is logged with
// its stack trace; internal details never reach the client.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			proxy.WriteMessage(w, http.StatusInternalServerError, failure.MessageInternal)
		}()

		next.ServeHTTP(w, r)
	})
}
