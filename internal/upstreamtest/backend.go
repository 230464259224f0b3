// Package upstreamtest provides a scripted fake Analysis Backend for tests.
package upstreamtest

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Reply is one scripted answer.
type Reply struct {
	Status  int
	Body    interface{}
	Delay   time.Duration
	Headers map[string]string

	// Drop closes the connection without writing a response.
	Drop bool
}

// Received describes one request the backend saw.
type Received struct {
	Method        string
	Path          string
	ContentType   string
	ContentLength int64
	Files         map[string]string // field -> filename
	FileSizes     map[string]int64
	JSON          map[string]interface{}
	At            time.Time
}

// Backend is a fake Analysis Backend. Each path replays its script in
// order; the last reply repeats once the script is used up.
type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	scripts  map[string][]Reply
	cursor   map[string]int
	received []Received
}

// AnalysisBody is a representative /analyze reply.
var AnalysisBody = map[string]interface{}{
	"summary":      "Lease agreement between two parties.",
	"obligations":  []interface{}{},
	"risks":        []interface{}{},
	"clauses":      []interface{}{},
	"riskLevel":    "medium",
	"tags":         []string{"lease", "property", "lease", "renewal"},
	"size":         "12 KB",
	"type":         "pdf",
	"pages":        3,
	"analyzedText": "This lease...",
	"pageOffsets":  []int{0, 120, 240},
	"highlights":   []interface{}{},
}

// ChatBody is a representative /chat reply.
var ChatBody = map[string]interface{}{"type": "ai", "content": "The term is 12 months."}

// CompareBody is a representative /compare reply.
var CompareBody = map[string]interface{}{"versionA": "v1.pdf", "versionB": "v2.pdf", "changes": []interface{}{}}

// New starts a backend answering every endpoint successfully.
func New() *Backend {
	b := &Backend{
		scripts: map[string][]Reply{
			"/analyze": {{Status: http.StatusOK, Body: AnalysisBody}},
			"/chat":    {{Status: http.StatusOK, Body: ChatBody}},
			"/compare": {{Status: http.StatusOK, Body: CompareBody}},
			"/":        {{Status: http.StatusOK, Body: map[string]string{"status": "ok"}}},
		},
		cursor: make(map[string]int),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close shuts the backend down.
func (b *Backend) Close() {
	b.server.Close()
}

// Script replaces the replies for path and rewinds it.
func (b *Backend) Script(path string, replies ...Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[path] = replies
	b.cursor[path] = 0
}

// Statuses scripts plain replies with the given status codes. 2xx replies
// carry body; others carry a FastAPI-style {"detail": ...} error.
func (b *Backend) Statuses(path string, body interface{}, codes ...int) {
	replies := make([]Reply, len(codes))
	for i, code := range codes {
		if code >= 200 && code < 300 {
			replies[i] = Reply{Status: code, Body: body}
		} else {
			replies[i] = Reply{Status: code, Body: map[string]string{"detail": http.StatusText(code)}}
		}
	}
	b.Script(path, replies...)
}

// Count returns the number of requests received for path ("" for all).
func (b *Backend) Count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if path == "" {
		return len(b.received)
	}
	n := 0
	for _, r := range b.received {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Received returns a copy of every request seen so far.
func (b *Backend) Received() []Received {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Received, len(b.received))
	copy(out, b.received)
	return out
}

func (b *Backend) next(path string) (Reply, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	script, ok := b.scripts[path]
	if !ok || len(script) == 0 {
		return Reply{}, false
	}
	i := b.cursor[path]
	if i >= len(script) {
		i = len(script) - 1
	} else {
		b.cursor[path] = i + 1
	}
	return script[i], true
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	rec := inspect(r)

	b.mu.Lock()
	b.received = append(b.received, rec)
	b.mu.Unlock()

	reply, ok := b.next(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	if reply.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}

	for key, value := range reply.Headers {
		w.Header().Set(key, value)
	}

	switch v := reply.Body.(type) {
	case nil:
		w.WriteHeader(reply.Status)
	case string:
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, v)
	case []byte:
		w.WriteHeader(reply.Status)
		_, _ = w.Write(v)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func inspect(r *http.Request) Received {
	rec := Received{
		Method:        r.Method,
		Path:          r.URL.Path,
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
		At:            time.Now(),
	}

	mediaType, params, _ := mime.ParseMediaType(rec.ContentType)
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		rec.Files = make(map[string]string)
		rec.FileSizes = make(map[string]int64)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			n, _ := io.Copy(io.Discard, part)
			rec.Files[part.FormName()] = part.FileName()
			rec.FileSizes[part.FormName()] = n
		}
	case mediaType == "application/json":
		_ = json.NewDecoder(r.Body).Decode(&rec.JSON)
	}
	return rec
}
