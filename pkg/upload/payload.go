package upload

import (
	"fmt"
	"io"
	"sync"

	"lexiclaire/gateway/pkg/failure"
)

const (
	// DefaultMaxBytes is the per-file upload ceiling (25 MiB).
	DefaultMaxBytes int64 = 25 << 20

	// DefaultMemoryThreshold is the part size above which the multipart
	// parser spools to a temp file while the form is being read.
	DefaultMemoryThreshold int64 = 8 << 20

	// DefaultMaxFiles is the number of file parts a form may carry.
	DefaultMaxFiles = 2

	// formOverhead bounds non-file form fields and multipart framing.
	formOverhead int64 = 1 << 20

	// DefaultContentType is used when a part declares none.
	DefaultContentType = "application/octet-stream"
)

// Config configures upload buffering.
type Config struct {
	// MaxBytes is the per-file ceiling in bytes
	MaxBytes int64

	// MemoryThreshold is passed to the multipart parser as its memory budget
	MemoryThreshold int64

	// MaxFiles bounds the number of file parts accepted per request
	MaxFiles int
}

// DefaultConfig returns the default upload configuration.
func DefaultConfig() Config {
	return Config{
		MaxBytes:        DefaultMaxBytes,
		MemoryThreshold: DefaultMemoryThreshold,
		MaxFiles:        DefaultMaxFiles,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MemoryThreshold <= 0 {
		c.MemoryThreshold = DefaultMemoryThreshold
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = DefaultMaxFiles
	}
	return c
}

// bodyLimit is the largest request body ParseForm will read.
func (c Config) bodyLimit() int64 {
	return c.MaxBytes*int64(c.MaxFiles) + formOverhead
}

// Payload is one fully buffered upload. It is owned by the request that
// created it and must not be shared.
type Payload struct {
	// Filename is the declared filename
	Filename string

	// ContentType is the declared content type
	ContentType string

	// Size is the measured size in bytes
	Size int64

	mu       sync.Mutex
	data     []byte
	cleanups []func()
	done     bool
}

// NewPayload wraps already-buffered bytes.
func NewPayload(filename, contentType string, data []byte) *Payload {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Payload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		data:        data,
	}
}

// Bytes returns the buffered content, or nil after Release.
func (p *Payload) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// OnRelease registers fn to run when the payload is released.
// If the payload was already released, fn runs immediately.
func (p *Payload) OnRelease(fn func()) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		fn()
		return
	}
	p.cleanups = append(p.cleanups, fn)
	p.mu.Unlock()
}

// Released reports whether Release has run.
func (p *Payload) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Release drops the buffer and runs registered cleanups. Safe to call any
// number of times; only the first call has an effect.
func (p *Payload) Release() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.data = nil
	cleanups := p.cleanups
	p.cleanups = nil
	p.mu.Unlock()

	for _, fn := range cleanups {
		fn()
	}
}

// Read buffers src fully, enforcing max. A declared size above max fails
// without reading. At most max+1 bytes are consumed from src.
func Read(src io.Reader, filename, contentType string, declared, max int64) (*Payload, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if declared > max {
		return nil, tooLarge(filename, declared, max)
	}

	data, err := io.ReadAll(io.LimitReader(src, max+1))
	if err != nil {
		return nil, failure.Wrap(failure.UnreadableUpload, "upload", fmt.Errorf("read %q: %w", filename, err))
	}
	if int64(len(data)) > max {
		return nil, tooLarge(filename, int64(len(data)), max)
	}

	return NewPayload(filename, contentType, data), nil
}

func tooLarge(filename string, size, max int64) *failure.Error {
	return &failure.Error{
		Kind:    failure.PayloadTooLarge,
		Op:      "upload",
		Code:    "payload_too_large",
		Message: fmt.Sprintf("%q is %d bytes, limit is %d", filename, size, max),
	}
}
