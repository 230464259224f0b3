package recorder

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/results"
)

// File is the declared metadata of one uploaded file.
type File struct {
	Name        string
	ContentType string
	Size        int64
}

// Completion describes a finished request.
type Completion struct {
	RequestID string
	Operation string

	// Files are the uploads of analyze (one) or compare (two)
	Files []File

	// DocumentID identifies the document a chat question was about
	DocumentID string

	// Body is the upstream success body (nil on failure)
	Body []byte

	// Err is the terminal failure (nil on success)
	Err error

	Attempts int
	Duration time.Duration
}

// analysisFields are the backend response fields copied onto a record.
type analysisFields struct {
	RiskLevel string   `json:"riskLevel"`
	Tags      []string `json:"tags"`
	Size      string   `json:"size"`
	Type      string   `json:"type"`
}

// BuildRecord constructs the record for a completion.
func BuildRecord(c Completion) *results.Record {
	r := &results.Record{
		ID:        uuid.New().String(),
		RequestID: c.RequestID,
		Operation: c.Operation,
		Title:     title(c),
		Status:    results.StatusAnalyzed,
		Tags:      []string{},
		Attempts:  c.Attempts,
		Duration:  c.Duration,
		CreatedAt: time.Now(),
	}

	if c.Err != nil {
		fe := failure.As(c.Err)
		r.Status = results.StatusFailed
		r.ErrorKind = fe.Kind.String()
		r.ErrorMessage = fe.ClientMessage()
	} else if len(c.Body) > 0 {
		var fields analysisFields
		if json.Unmarshal(c.Body, &fields) == nil {
			r.RiskLevel = results.ParseRiskLevel(fields.RiskLevel)
			r.Tags = results.NormalizeTags(fields.Tags)
			r.Size = fields.Size
			r.Type = fields.Type
		}
	}

	if r.Size == "" && len(c.Files) > 0 {
		var total int64
		for _, f := range c.Files {
			total += f.Size
		}
		r.Size = results.FormatSize(total)
	}
	if r.Type == "" && len(c.Files) > 0 {
		r.Type = fileType(c.Files[0])
	}

	return r
}

func title(c Completion) string {
	switch {
	case c.Operation == "chat":
		if c.DocumentID == "" {
			return "chat"
		}
		return "chat: " + c.DocumentID
	case len(c.Files) >= 2:
		return c.Files[0].Name + " vs " + c.Files[1].Name
	case len(c.Files) == 1:
		return c.Files[0].Name
	default:
		return c.Operation
	}
}

// fileType mirrors the backend's extension check and falls back to the
// declared content type.
func fileType(f File) string {
	switch ext := strings.ToLower(filepath.Ext(f.Name)); ext {
	case ".pdf", ".docx", ".txt":
		return ext[1:]
	}
	return f.ContentType
}
