package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a variant of the gateway failure taxonomy.
type Kind int

const (
	// KindUnknown is the zero value; it is never produced by the gateway itself.
	KindUnknown Kind = iota

	// PayloadTooLarge means an upload exceeded the configured ceiling.
	// Raised before any network call.
	PayloadTooLarge

	// UnreadableUpload means the inbound upload could not be fully read.
	// Raised before any network call.
	UnreadableUpload

	// TransientUpstream is a single retryable upstream failure.
	TransientUpstream

	// PermanentUpstream is an upstream failure that retrying will not fix.
	PermanentUpstream

	// RetriesExhausted is terminal after every scheduled attempt failed transiently.
	RetriesExhausted

	// RecordingFailure is a result persistence failure. It is logged, never surfaced.
	RecordingFailure
)

// String returns the snake_case name used in logs, metrics and stored records.
func (k Kind) String() string {
	switch k {
	case PayloadTooLarge:
		return "payload_too_large"
	case UnreadableUpload:
		return "unreadable_upload"
	case TransientUpstream:
		return "transient_upstream"
	case PermanentUpstream:
		return "permanent_upstream"
	case RetriesExhausted:
		return "retries_exhausted"
	case RecordingFailure:
		return "recording_failure"
	default:
		return "unknown"
	}
}

// CodeInvalidRequest marks a request rejected before reaching the backend.
// Its Message is shown to the client.
const CodeInvalidRequest = "invalid_request"

// Invalid reports a malformed client request as a permanent failure.
func Invalid(op, message string) *Error {
	return &Error{Kind: PermanentUpstream, Op: op, Code: CodeInvalidRequest, Message: message}
}

// Client-facing messages.
const (
	MessageWarmingUp    = "AI service is warming up. Please retry in a moment."
	MessageTooLarge     = "File exceeds the 25 MB limit."
	MessageUnreadable   = "Uploaded file could not be read."
	MessageUpstreamFail = "AI service rejected the request."
	MessageInternal     = "Internal server error."
)

// Error is the single error type of the failure taxonomy.
type Error struct {
	// Kind is the taxonomy variant
	Kind Kind

	// Op is the logical operation (analyze, chat, compare, wake, upload, record)
	Op string

	// StatusCode is the upstream HTTP status (0 for connection-level failures)
	StatusCode int

	// Code is a short machine-readable reason (e.g. "connection_refused")
	Code string

	// Message is a human-readable reason, safe to show to clients
	Message string

	// Attempts is the number of upstream attempts made (0 for local failures)
	Attempts int

	// Cause is the underlying error (if any)
	Cause error
}

// New creates an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error of the given kind wrapping cause.
func Wrap(kind Kind, op string, cause error) *Error {
	e := &Error{Kind: kind, Op: op, Cause: cause}
	if cause != nil {
		e.Message = cause.Error()
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	switch {
	case e.StatusCode > 0 && e.Attempts > 0:
		return fmt.Sprintf("%s %s (status %d, %d attempts): %s", e.Op, e.Kind, e.StatusCode, e.Attempts, msg)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s %s (status %d): %s", e.Op, e.Kind, e.StatusCode, msg)
	case e.Attempts > 0:
		return fmt.Sprintf("%s %s (%d attempts): %s", e.Op, e.Kind, e.Attempts, msg)
	default:
		return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, msg)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ClientStatus returns the HTTP status the client receives for this failure.
func (e *Error) ClientStatus() int {
	switch e.Kind {
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case UnreadableUpload, PermanentUpstream:
		return http.StatusBadRequest
	case TransientUpstream, RetriesExhausted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message the client receives for this failure.
// Raw upstream bodies never appear here; permanent failures use the upstream
// detail field when one was extracted.
func (e *Error) ClientMessage() string {
	switch e.Kind {
	case PayloadTooLarge:
		return MessageTooLarge
	case UnreadableUpload:
		if e.Message != "" && e.Cause == nil {
			return e.Message
		}
		return MessageUnreadable
	case PermanentUpstream:
		if e.Code == CodeInvalidRequest && e.Cause == nil && e.Message != "" {
			return e.Message
		}
		if e.StatusCode > 0 && e.Message != "" {
			return e.Message
		}
		return MessageUpstreamFail
	case TransientUpstream, RetriesExhausted:
		return MessageWarmingUp
	default:
		return MessageInternal
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err) == Transient
}

// As returns err as a *Error, converting unknown errors into an internal failure.
func As(err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Kind: KindUnknown, Op: "unknown", Cause: err}
}
