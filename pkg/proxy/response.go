package proxy

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"lexiclaire/gateway/pkg/proxy/types"
)

// ContentTypeJSON is the content type of every API response.
const ContentTypeJSON = "application/json"

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, types.MessageResponse{Message: msg})
}

// WritePassthrough writes an upstream body unmodified. The upstream always
// answers JSON, so the content type is fixed rather than copied.
func WritePassthrough(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed to write passthrough body", "error", err)
	}
}
