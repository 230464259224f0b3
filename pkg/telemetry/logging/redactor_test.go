package logging

import (
	"log/slog"
	"testing"

	"lexiclaire/gateway/pkg/config"
)

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name           string
		customPatterns []config.RedactPattern
		wantPatterns   int
	}{
		{"default patterns only", nil, len(defaultPatterns)},
		{
			name: "with custom patterns",
			customPatterns: []config.RedactPattern{
				{Name: "matter_id", Pattern: `MAT-[0-9]{6}`, Replacement: "MAT-***"},
			},
			wantPatterns: len(defaultPatterns) + 1,
		},
		{
			name: "invalid custom pattern is skipped",
			customPatterns: []config.RedactPattern{
				{Name: "invalid", Pattern: "[unclosed", Replacement: "***"},
			},
			wantPatterns: len(defaultPatterns),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRedactor(tt.customPatterns)
			if len(r.patterns) != tt.wantPatterns {
				t.Errorf("got %d patterns, want %d", len(r.patterns), tt.wantPatterns)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor([]config.RedactPattern{
		{Name: "matter_id", Pattern: `MAT-[0-9]{6}`, Replacement: "MAT-***"},
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "upstream warming up", "upstream warming up"},
		{"risk words survive", "risk-assessment complete", "risk-assessment complete"},
		{"api key", "key sk-abcdef1234567890", "key sk-***"},
		{"bearer", "Authorization: Bearer eyJhbGciOi.abc", "Authorization: Bearer ***"},
		{"email", "sent to jane.doe@example.com", "sent to ***@example.com"},
		{"ssn", "ssn 123-45-6789", "ssn ***-**-****"},
		{"card", "card 4111-1111-1111-1111", "card ****-****-****-****"},
		{"phone", "call 555-123-4567", "call ***-***-****"},
		{"password", "password=hunter2", "password: ***"},
		{"custom", "matter MAT-123456", "matter MAT-***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"document content", slog.String("document", "Lease agreement..."), "[redacted]"},
		{"analyzed text", slog.String("analyzedText", "..."), "[redacted]"},
		{"token", slog.String("session_token", "abcdef123"), "abcd***"},
		{"short secret", slog.String("secret", "abc"), "***"},
		{"non-string sensitive", slog.Any("password", 1234), "***"},
		{"plain", slog.String("filename", "lease.pdf"), "lease.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RedactAttr(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("RedactAttr(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr_Group(t *testing.T) {
	r := NewRedactor(nil)

	got := r.RedactAttr(slog.Group("upload",
		slog.String("filename", "lease.pdf"),
		slog.String("content", "confidential"),
	))

	attrs := got.Value.Group()
	if len(attrs) != 2 {
		t.Fatalf("group has %d attrs", len(attrs))
	}
	if attrs[0].Value.String() != "lease.pdf" {
		t.Errorf("filename = %q", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != "[redacted]" {
		t.Errorf("content = %q", attrs[1].Value.String())
	}
}
