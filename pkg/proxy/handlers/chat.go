package handlers

import (
	"net/http"

	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/proxy"
)

// ChatHandler serves POST /api/chat.
type ChatHandler struct {
	Orchestrator Orchestrator
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(o Orchestrator) *ChatHandler {
	return &ChatHandler{Orchestrator: o}
}

// ServeHTTP implements http.Handler. The orchestrator decodes the body, so
// a malformed question is answered with 400 and still recorded.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}

	r, requestID := annotate(r, string(gateway.OpChat))
	res := h.Orchestrator.Chat(r.Context(), orchestrator.ChatInput{
		Request:   r,
		RequestID: requestID,
	})
	writeResult(w, res)
}
