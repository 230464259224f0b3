package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"lexiclaire/gateway/pkg/config"
)

// Redactor redacts PII and credentials from log fields. Uploaded documents
// and chat questions pass through the gateway, so any attribute whose key
// names document content is dropped entirely.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Common PII pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternSSN         = "ssn"
	PatternCreditCard  = "credit_card"
	PatternPhone       = "phone"
	PatternPassword    = "password"
)

// Patterns are applied in order; the more specific shapes go first so a
// card number is not half-eaten by the phone pattern.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternAPIKey, `(\bsk-[a-zA-Z0-9]{8,}|api[-_]?key[-_:=]\s*[a-zA-Z0-9]+)`, "sk-***"},
	{PatternPassword, `(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***"},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`, "***@$1"},
	{PatternCreditCard, `\b(?:\d[ -]?){12,15}\d\b`, "****-****-****-****"},
	{PatternSSN, `\b\d{3}-\d{2}-\d{4}\b`, "***-**-****"},
	{PatternPhone, `(?:\+?1[-.\s]?)?\(?\b\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`, "***-***-****"},
}

// contentKeys name attributes that carry document or chat content.
var contentKeys = []string{
	"document", "question", "analyzed_text", "analyzedtext", "body", "content",
}

// sensitiveKeys name attributes whose value is a credential.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "cookie",
	"private_key", "privatekey",
}

// NewRedactor creates a new Redactor with default and custom patterns.
// Custom patterns that fail to compile are skipped.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString redacts PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range r.patterns {
		value = pattern.regex.ReplaceAllString(value, pattern.replacement)
	}
	return value
}

// RedactAttr redacts a single attribute, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = r.RedactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if isContentKey(a.Key) {
		return slog.String(a.Key, "[redacted]")
	}
	if isSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString {
			return slog.String(a.Key, maskValue(a.Value.String()))
		}
		return slog.String(a.Key, "***")
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

func isContentKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range contentKeys {
		if lower == k {
			return true
		}
	}
	return false
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// maskValue keeps a short prefix for correlation.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
