package failure

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
)

// Class is the retry eligibility of a failure.
type Class int

const (
	// Permanent failures are never retried.
	Permanent Class = iota

	// Transient failures may succeed if retried unchanged.
	Transient
)

// String returns the class name.
func (c Class) String() string {
	if c == Transient {
		return "transient"
	}
	return "permanent"
}

// Non-standard statuses emitted by edge proxies in front of cold containers.
const (
	StatusOriginTimedOut  = 522
	StatusTimeoutOccurred = 524
)

// ClassifyStatus maps an upstream HTTP status to a Class.
// Callers must not pass 2xx codes; they are reported as Permanent.
func ClassifyStatus(code int) Class {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		StatusOriginTimedOut,
		StatusTimeoutOccurred:
		return Transient
	default:
		return Permanent
	}
}

// Classify maps a failure to a Class. It is pure and safe for concurrent use.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}

	var fe *Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case TransientUpstream:
			return Transient
		case PermanentUpstream, RetriesExhausted, PayloadTooLarge, UnreadableUpload, RecordingFailure:
			return Permanent
		}
		if fe.StatusCode > 0 {
			return ClassifyStatus(fe.StatusCode)
		}
		if fe.Cause == nil {
			return Permanent
		}
		err = fe.Cause
	}

	// Client cancellation is deliberate; retrying would ignore it.
	if errors.Is(err, context.Canceled) {
		return Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return Transient
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return Transient
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}

	return Permanent
}

// Code returns a short machine-readable reason for a connection-level error.
func Code(err error) string {
	var dnsErr *net.DNSError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection_reset"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection_refused"
	case errors.Is(err, syscall.EPIPE):
		return "broken_pipe"
	case errors.Is(err, syscall.ETIMEDOUT):
		return "timed_out"
	case errors.As(err, &dnsErr):
		return "dns_failure"
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return "unexpected_eof"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "error"
}
