package logging

import (
	"context"
	"log/slog"
)

// contextHandler decorates records with context correlation fields and
// redacts every attribute before it reaches the underlying handler.
type contextHandler struct {
	next     slog.Handler
	redactor *Redactor
}

func newContextHandler(next slog.Handler, redactor *Redactor) *contextHandler {
	return &contextHandler{next: next, redactor: redactor}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	for _, a := range contextAttrs(ctx) {
		out.AddAttrs(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &contextHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}

func (h *contextHandler) redact(a slog.Attr) slog.Attr {
	if h.redactor == nil {
		return a
	}
	return h.redactor.RedactAttr(a)
}
