package gateway

import (
	"net/http"
	"time"
)

// Operation names a logical upstream call.
type Operation string

const (
	OpAnalyze Operation = "analyze"
	OpChat    Operation = "chat"
	OpCompare Operation = "compare"
	OpWake    Operation = "wake"
)

// Upstream endpoint paths.
const (
	PathAnalyze = "/analyze"
	PathChat    = "/chat"
	PathCompare = "/compare"
	PathWake    = "/"
)

// Multipart field names the backend expects.
const (
	FieldDocument = "document"
	FieldFileA    = "fileA"
	FieldFileB    = "fileB"
)

// TimeoutClass selects the per-attempt ceiling of a request.
type TimeoutClass string

const (
	ClassAnalyze TimeoutClass = "analyze"
	ClassChat    TimeoutClass = "chat"
	ClassCompare TimeoutClass = "compare"
	ClassWake    TimeoutClass = "wake"
)

// Request is an immutable description of one logical upstream call. It is
// built once and reused by every attempt.
type Request struct {
	Operation   Operation
	Method      string
	Path        string
	Body        []byte
	ContentType string
	Header      http.Header
	Class       TimeoutClass
}

// Response is a successful upstream reply.
type Response struct {
	// StatusCode is the upstream 2xx status
	StatusCode int

	// Header holds the upstream response headers
	Header http.Header

	// Body is the upstream body, unmodified
	Body []byte

	// Latency spans the whole attempt chain including retry waits
	Latency time.Duration

	// Attempts is the number of attempts made, including the successful one
	Attempts int
}

// ChatMessage is one turn of chat history.
type ChatMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question     string        `json:"question"`
	History      []ChatMessage `json:"history"`
	DocumentID   string        `json:"documentId"`
	AnalyzedText string        `json:"analyzedText"`
}
