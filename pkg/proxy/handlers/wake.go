package handlers

import (
	"net/http"

	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/proxy"
	"lexiclaire/gateway/pkg/proxy/types"
)

// WakeHandler serves POST /api/wake. It starts a background probe and answers
// 202 immediately; the probe's outcome is only visible in logs, metrics and
// readiness.
type WakeHandler struct {
	Waker Waker
}

// NewWakeHandler creates a new wake handler.
func NewWakeHandler(w Waker) *WakeHandler {
	return &WakeHandler{Waker: w}
}

// ServeHTTP implements http.Handler.
func (h *WakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}

	annotate(r, string(gateway.OpWake))
	warm := h.Waker.IsWarm()
	started := h.Waker.WakeAsync()

	msg := "Wake probe started."
	if !started {
		msg = "Wake probe already in progress."
	}
	proxy.WriteJSON(w, http.StatusAccepted, types.WakeResponse{
		Message: msg,
		Started: started,
		Warm:    warm,
	})
}
