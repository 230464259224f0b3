package results

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the lifecycle state shown for a document.
type Status string

const (
	StatusAnalyzed  Status = "analyzed"
	StatusAnalyzing Status = "analyzing"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAnalyzed, StatusAnalyzing, StatusFailed:
		return true
	}
	return false
}

// RiskLevel is the overall risk reported by the backend. Empty means unknown.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
	RiskNone   RiskLevel = ""
)

// ParseRiskLevel normalizes a backend value; anything unknown becomes RiskNone.
func ParseRiskLevel(s string) RiskLevel {
	switch r := RiskLevel(strings.ToLower(strings.TrimSpace(s))); r {
	case RiskHigh, RiskMedium, RiskLow:
		return r
	}
	return RiskNone
}

// MaxTags bounds the tags kept on a record.
const MaxTags = 10

// Record is the outcome metadata of one completed request.
type Record struct {
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the request id middleware
	Operation string `json:"operation"`  // analyze, compare, chat

	Title     string    `json:"title"`      // Declared filename, "A vs B", or "chat: <documentId>"
	Status    Status    `json:"status"`     // analyzed or failed
	RiskLevel RiskLevel `json:"risk_level"` // Empty when unknown
	Tags      []string  `json:"tags"`       // At most MaxTags, ordered, unique
	Size      string    `json:"size"`       // Human size, e.g. "12 KB"
	Type      string    `json:"type"`       // pdf, docx, txt, or declared content type

	ErrorKind    string `json:"error_kind,omitempty"`    // failure.Kind name when failed
	ErrorMessage string `json:"error_message,omitempty"` // Client-facing message when failed

	Attempts  int           `json:"attempts"`   // Upstream attempts made
	Duration  time.Duration `json:"duration"`   // Request wall clock
	CreatedAt time.Time     `json:"created_at"` // When the record was built
}

// NormalizeTags de-duplicates tags preserving first occurrence order, drops
// empty values and truncates to MaxTags.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, min(len(tags), MaxTags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// FormatSize renders a byte count the way the backend does: whole
// kilobytes, rounded half to even.
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%d KB", int64(math.RoundToEven(float64(bytes)/1024)))
}

// Query filters records. Zero fields match everything.
type Query struct {
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	Operation string `json:"operation,omitempty"`
	Status    Status `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder is "asc" or "desc" by CreatedAt; desc when empty
	SortOrder string `json:"sort_order,omitempty"`
}

// Matches reports whether r satisfies the query filters, ignoring paging.
func (q *Query) Matches(r *Record) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.CreatedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.CreatedAt.After(*q.EndTime) {
		return false
	}
	if q.Operation != "" && r.Operation != q.Operation {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.RequestID != "" && r.RequestID != q.RequestID {
		return false
	}
	return true
}

// Validate checks query bounds.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	if q.Limit < 0 || q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("limit and offset must not be negative"))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return NewQueryError(q, fmt.Errorf("invalid sort order %q", q.SortOrder))
	}
	if q.Status != "" && !q.Status.Valid() {
		return NewQueryError(q, fmt.Errorf("invalid status %q", q.Status))
	}
	if q.StartTime != nil && q.EndTime != nil && q.EndTime.Before(*q.StartTime) {
		return NewQueryError(q, fmt.Errorf("end time before start time"))
	}
	return nil
}

// Store is the persistence contract of a results backend. Implementations
// must be safe for concurrent use.
type Store interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, newest first unless SortOrder is "asc".
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of matching records, ignoring paging.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes matching records and returns how many were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
