package failure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want Class
	}{
		{http.StatusRequestTimeout, Transient},
		{http.StatusBadGateway, Transient},
		{http.StatusServiceUnavailable, Transient},
		{http.StatusGatewayTimeout, Transient},
		{522, Transient},
		{524, Transient},
		{http.StatusBadRequest, Permanent},
		{http.StatusUnauthorized, Permanent},
		{http.StatusNotFound, Permanent},
		{http.StatusUnprocessableEntity, Permanent},
		{http.StatusTooManyRequests, Permanent},
		{http.StatusInternalServerError, Permanent},
		{http.StatusNotImplemented, Permanent},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			if got := ClassifyStatus(tt.code); got != tt.want {
				t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	opErr := func(errno syscall.Errno) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", errno)}
	}

	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Permanent},
		{"connection reset", opErr(syscall.ECONNRESET), Transient},
		{"connection refused", opErr(syscall.ECONNREFUSED), Transient},
		{"broken pipe", opErr(syscall.EPIPE), Transient},
		{"timed out", opErr(syscall.ETIMEDOUT), Transient},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "backend"}, Transient},
		{"net timeout", timeoutErr{}, Transient},
		{"deadline exceeded", fmt.Errorf("attempt: %w", context.DeadlineExceeded), Transient},
		{"unexpected eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), Transient},
		{"canceled", fmt.Errorf("client gone: %w", context.Canceled), Permanent},
		{"unknown", errors.New("boom"), Permanent},
		{"transient kind", &Error{Kind: TransientUpstream, StatusCode: 503}, Transient},
		{"permanent kind", &Error{Kind: PermanentUpstream, StatusCode: 404}, Permanent},
		{"exhausted kind", &Error{Kind: RetriesExhausted, StatusCode: 503}, Permanent},
		{"unknown kind with status", &Error{StatusCode: 504}, Transient},
		{"unknown kind with cause", &Error{Cause: opErr(syscall.ECONNRESET)}, Transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, "connection_refused"},
		{context.DeadlineExceeded, "deadline_exceeded"},
		{context.Canceled, "canceled"},
		{&net.DNSError{Err: "no such host"}, "dns_failure"},
		{errors.New("other"), "error"},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
