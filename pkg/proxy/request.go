package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/proxy/types"
)

// MaxChatBodySize bounds the JSON body of a chat request (8 MiB). Chat
// carries the analyzed text, which the backend truncates anyway.
const MaxChatBodySize = 8 << 20

// ParseChatRequest decodes the body of POST /api/chat.
//
// Malformed JSON, trailing data and oversized bodies are rejected as
// permanent invalid-request failures so the handler can answer 400 without
// contacting the backend. Semantic validation of the fields is left to the
// backend, whose detail message is surfaced on rejection.
func ParseChatRequest(r *http.Request) (gateway.ChatRequest, error) {
	op := string(gateway.OpChat)
	body := http.MaxBytesReader(nil, r.Body, MaxChatBodySize)
	defer body.Close()

	var req types.ChatRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return gateway.ChatRequest{}, failure.Invalid(op,
				fmt.Sprintf("Request body exceeds %d MB.", MaxChatBodySize>>20))
		case errors.Is(err, io.EOF):
			return gateway.ChatRequest{}, failure.Invalid(op, "Request body is empty.")
		default:
			return gateway.ChatRequest{}, failure.Invalid(op, "Request body is not valid JSON.")
		}
	}
	if dec.More() {
		return gateway.ChatRequest{}, failure.Invalid(op, "Request body is not valid JSON.")
	}

	return req.Gateway(), nil
}
