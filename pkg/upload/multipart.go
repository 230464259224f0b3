package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Part is one file part of an outbound multipart body.
type Part struct {
	// Field is the form field name
	Field string

	// Filename is sent in Content-Disposition
	Filename string

	// ContentType of the part; DefaultContentType when empty
	ContentType string

	// Data is the part content
	Data []byte
}

// PartFrom builds a Part from a buffered payload.
func PartFrom(field string, p *Payload) Part {
	return Part{Field: field, Filename: p.Filename, ContentType: p.ContentType, Data: p.Bytes()}
}

// Body is a fully encoded multipart body. It is immutable once built and may
// be sent any number of times.
type Body struct {
	data        []byte
	contentType string
}

// NewMultipartBody encodes parts into a single buffer.
func NewMultipartBody(parts ...Part) (*Body, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("multipart body needs at least one part")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.Field == "" {
			return nil, fmt.Errorf("multipart part has no field name")
		}
		ct := p.ContentType
		if ct == "" {
			ct = DefaultContentType
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(p.Field), escapeQuotes(p.Filename)))
		h.Set("Content-Type", ct)

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %q: %w", p.Field, err)
		}
		if _, err := pw.Write(p.Data); err != nil {
			return nil, fmt.Errorf("failed to write part %q: %w", p.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &Body{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// Len is the exact encoded length, used as Content-Length.
func (b *Body) Len() int64 {
	return int64(len(b.data))
}

// ContentType returns the multipart content type including the boundary.
func (b *Body) ContentType() string {
	return b.contentType
}

// Bytes returns the encoded body.
func (b *Body) Bytes() []byte {
	return b.data
}

// Reader returns a fresh reader over the encoded body.
func (b *Body) Reader() io.Reader {
	return bytes.NewReader(b.data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
