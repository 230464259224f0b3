package handlers

import (
	"net/http"

	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/proxy"
)

// CompareHandler serves POST /api/compare with multipart fields "fileA" and
// "fileB".
type CompareHandler struct {
	Orchestrator Orchestrator
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(o Orchestrator) *CompareHandler {
	return &CompareHandler{Orchestrator: o}
}

// ServeHTTP implements http.Handler.
func (h *CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}

	r, requestID := annotate(r, string(gateway.OpCompare))
	res := h.Orchestrator.Compare(r.Context(), orchestrator.CompareInput{
		Request:   r,
		RequestID: requestID,
	})
	writeResult(w, res)
}
