package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newTestLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg.Writer = buf
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid JSON config", Config{Level: "info", Format: "json", RedactPII: true}, false},
		{"valid text config", Config{Level: "debug", Format: "text"}, false},
		{"valid console config", Config{Level: "WARN", Format: "console"}, false},
		{"defaults", Config{}, false},
		{"invalid log level", Config{Level: "invalid"}, true},
		{"invalid format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "warn"})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info"})
	child := logger.With("component", "gateway")

	child.Debug("before")
	if buf.Len() != 0 {
		t.Fatal("debug logged before level change")
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	child.Debug("after")
	if !strings.Contains(buf.String(), "after") {
		t.Error("level change did not reach derived logger")
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", logger.Level())
	}

	if err := logger.SetLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info"})

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithOperation(ctx, "analyze")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	logger.InfoContext(ctx, "attempt failed", "attempt", 2)

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["operation"] != "analyze" {
		t.Errorf("operation = %v", entry["operation"])
	}
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v", entry["trace_id"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v", entry["attempt"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", RedactPII: true})
	logger.SetDefault()
	defer slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	component := slog.Default().With("component", "gateway", "api_key", "secretvalue")
	component.Info("upstream call",
		"question", "Can the landlord terminate early?",
		"contact", "jane.doe@example.com",
		"error", errors.New("auth failed for Bearer abc.def"),
	)

	entry := decodeLine(t, buf)
	if entry["question"] != "[redacted]" {
		t.Errorf("question = %v", entry["question"])
	}
	if entry["api_key"] != "secr***" {
		t.Errorf("api_key = %v", entry["api_key"])
	}
	if entry["contact"] != "***@example.com" {
		t.Errorf("contact = %v", entry["contact"])
	}
	if entry["error"] != "auth failed for Bearer ***" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["component"] != "gateway" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestLogger_NoRedaction(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", RedactPII: false})

	logger.Info("chat", "question", "plain")
	if decodeLine(t, buf)["question"] != "plain" {
		t.Error("value redacted with RedactPII disabled")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "text"})

	logger.Info("server started", "addr", "127.0.0.1:8080")
	out := buf.String()
	if !strings.Contains(out, "msg=\"server started\"") || !strings.Contains(out, "addr=127.0.0.1:8080") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
