package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMiddleware extracts W3C trace context from incoming requests, starts
// a server span named after the route, and echoes the trace id in the
// X-Trace-ID response header.
//
// Usage:
//
//	handler = tracing.HTTPMiddleware(tracer, "api.analyze")(handler)
func HTTPMiddleware(t *Tracer, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := t.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.IsValid() {
				w.Header().Set("X-Trace-ID", sc.TraceID().String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
