package handlers

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/proxy"
	"lexiclaire/gateway/pkg/proxy/middleware"
	"lexiclaire/gateway/pkg/telemetry/logging"
	"lexiclaire/gateway/pkg/telemetry/tracing"
)

// Orchestrator runs client calls against the Analysis Backend.
// *orchestrator.Orchestrator satisfies it.
type Orchestrator interface {
	Analyze(ctx context.Context, in orchestrator.AnalyzeInput) *orchestrator.Result
	Compare(ctx context.Context, in orchestrator.CompareInput) *orchestrator.Result
	Chat(ctx context.Context, in orchestrator.ChatInput) *orchestrator.Result
}

// Waker starts background wake probes. *gateway.Client satisfies it.
type Waker interface {
	WakeAsync() bool
	IsWarm() bool
}

// annotate tags the request context and server span with the operation and
// returns the request ID.
func annotate(r *http.Request, op string) (*http.Request, string) {
	ctx := logging.WithOperation(r.Context(), op)
	requestID := middleware.GetRequestID(ctx)
	tracing.SetRequestAttributes(trace.SpanFromContext(ctx), op, requestID)
	return r.WithContext(ctx), requestID
}

// writeResult renders an orchestrator decision: the upstream body on
// success, {"message": ...} otherwise.
func writeResult(w http.ResponseWriter, res *orchestrator.Result) {
	if res.OK() {
		proxy.WritePassthrough(w, res.Status, res.Body)
		return
	}
	proxy.WriteMessage(w, res.Status, res.Message)
}
