package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync"

	"lexiclaire/gateway/pkg/failure"
)

// NoFileMessage is reported when a form carries no file under the requested
// field names.
const NoFileMessage = "no file uploaded"

// Form is a parsed multipart request. It owns the parser's temporary
// storage and every Payload taken from it.
type Form struct {
	cfg  Config
	form *multipart.Form

	mu       sync.Mutex
	payloads []*Payload
	once     sync.Once
}

// ParseForm reads the multipart body of r. The body is capped at
// MaxBytes*MaxFiles plus a small allowance for framing; a request whose
// declared Content-Length already exceeds that cap fails without reading.
func ParseForm(r *http.Request, cfg Config) (*Form, error) {
	cfg = cfg.withDefaults()
	limit := cfg.bodyLimit()

	if r.ContentLength > limit {
		return nil, tooLarge("request", r.ContentLength, limit)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, &failure.Error{
			Kind:    failure.UnreadableUpload,
			Op:      "upload",
			Code:    "not_multipart",
			Message: "expected a multipart/form-data upload",
			Cause:   err,
		}
	}

	mf, err := mr.ReadForm(cfg.MemoryThreshold)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge("request", maxErr.Limit+1, limit)
		}
		return nil, failure.Wrap(failure.UnreadableUpload, "upload", fmt.Errorf("parse form: %w", err))
	}

	return &Form{cfg: cfg, form: mf}, nil
}

// Value returns the first value of a non-file form field.
func (f *Form) Value(name string) string {
	if f.form == nil {
		return ""
	}
	if vs := f.form.Value[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Payload buffers the first file found under field or one of its aliases.
// The returned payload is released together with the form.
func (f *Form) Payload(field string, aliases ...string) (*Payload, error) {
	fh := f.fileHeader(field, aliases...)
	if fh == nil {
		return nil, &failure.Error{
			Kind:    failure.UnreadableUpload,
			Op:      "upload",
			Code:    "missing_file",
			Message: fmt.Sprintf("%s (field %q)", NoFileMessage, field),
		}
	}

	if fh.Size > f.cfg.MaxBytes {
		return nil, tooLarge(fh.Filename, fh.Size, f.cfg.MaxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, failure.Wrap(failure.UnreadableUpload, "upload", fmt.Errorf("open %q: %w", fh.Filename, err))
	}
	defer src.Close()

	p, err := Read(src, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f.cfg.MaxBytes)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()

	return p, nil
}

// FileInfo is the client-declared metadata of an uploaded file.
type FileInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// Declared returns the declared metadata of the file under field or an
// alias without reading it.
func (f *Form) Declared(field string, aliases ...string) (FileInfo, bool) {
	fh := f.fileHeader(field, aliases...)
	if fh == nil {
		return FileInfo{}, false
	}
	return FileInfo{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, true
}

func (f *Form) fileHeader(field string, aliases ...string) *multipart.FileHeader {
	if f.form == nil {
		return nil
	}
	for _, name := range append([]string{field}, aliases...) {
		if fhs := f.form.File[name]; len(fhs) > 0 {
			return fhs[0]
		}
	}
	return nil
}

// Release removes the form's temporary files and releases every payload
// taken from it. Only the first call has an effect.
func (f *Form) Release() {
	f.once.Do(func() {
		f.mu.Lock()
		payloads := f.payloads
		f.payloads = nil
		f.mu.Unlock()

		for _, p := range payloads {
			p.Release()
		}

		if f.form != nil {
			if err := f.form.RemoveAll(); err != nil {
				slog.Warn("failed to remove upload temp files", "error", err)
			}
		}
	})
}
