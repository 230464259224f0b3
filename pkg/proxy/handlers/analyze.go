package handlers

import (
	"net/http"

	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/proxy"
)

// AnalyzeHandler serves POST /api/analyze. The multipart field "document"
// (or "file") is buffered and sent to the backend.
type AnalyzeHandler struct {
	Orchestrator Orchestrator
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(o Orchestrator) *AnalyzeHandler {
	return &AnalyzeHandler{Orchestrator: o}
}

// ServeHTTP implements http.Handler.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}

	r, requestID := annotate(r, string(gateway.OpAnalyze))
	res := h.Orchestrator.Analyze(r.Context(), orchestrator.AnalyzeInput{
		Request:   r,
		RequestID: requestID,
	})
	writeResult(w, res)
}
