package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/proxy/types"
)

func TestParseChatRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"question":"What is the notice period?","documentId":"d1"}`},
		{name: "trailing newline", body: "{\"question\":\"q\"}\n"},
		{name: "empty", body: "", wantErr: true},
		{name: "truncated", body: `{"question":`, wantErr: true},
		{name: "wrong type", body: `{"question":42}`, wantErr: true},
		{name: "two objects", body: `{"question":"a"}{"question":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			got, err := ParseChatRequest(req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				fe := failure.As(err)
				if fe.ClientStatus() != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", fe.ClientStatus())
				}
				if fe.Code != failure.CodeInvalidRequest {
					t.Errorf("code = %q, want %q", fe.Code, failure.CodeInvalidRequest)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Question == "" {
				t.Error("question not decoded")
			}
			if got.History == nil {
				t.Error("history should default to an empty list")
			}
		})
	}
}

func TestParseChatRequest_TooLarge(t *testing.T) {
	body := `{"question":"` + strings.Repeat("a", MaxChatBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))

	_, err := ParseChatRequest(req)
	if err == nil {
		t.Fatal("expected error for oversized body")
	}
	if msg := failure.As(err).ClientMessage(); !strings.Contains(msg, "exceeds") {
		t.Errorf("message = %q, want size message", msg)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "transient",
			err:        failure.New(failure.TransientUpstream, "analyze", "503"),
			wantStatus: http.StatusBadGateway,
			wantMsg:    failure.MessageWarmingUp,
		},
		{
			name:       "invalid request",
			err:        failure.Invalid("chat", "Request body is not valid JSON."),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Request body is not valid JSON.",
		},
		{
			name:       "unknown error hides cause",
			err:        errors.New("dial tcp 10.0.0.3:8000: secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    failure.MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body types.MessageResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMsg)
			}
		})
	}
}

func TestWritePassthrough(t *testing.T) {
	w := httptest.NewRecorder()
	WritePassthrough(w, http.StatusOK, []byte(`{"a": 1,  "b":[ ]}`))

	if w.Header().Get("Content-Type") != ContentTypeJSON {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != `{"a": 1,  "b":[ ]}` {
		t.Errorf("body was modified: %q", w.Body.String())
	}
}
