package recorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/results"
	"lexiclaire/gateway/pkg/results/storage"
)

// failingStore fails every write and counts attempts.
type failingStore struct {
	calls atomic.Int64
}

var _ results.Store = (*failingStore)(nil)

var errLocked = errors.New("database is locked")

func (f *failingStore) Store(ctx context.Context, r *results.Record) error {
	f.calls.Add(1)
	return errLocked
}

func (f *failingStore) Query(ctx context.Context, q *results.Query) ([]*results.Record, error) {
	return nil, errLocked
}

func (f *failingStore) Count(ctx context.Context, q *results.Query) (int64, error) {
	return 0, errLocked
}

func (f *failingStore) Delete(ctx context.Context, q *results.Query) (int64, error) {
	return 0, errLocked
}

func (f *failingStore) Ping(ctx context.Context) error { return errLocked }
func (f *failingStore) Close() error                   { return nil }

// blockingStore holds every write until release is closed.
type blockingStore struct {
	*storage.MemoryStorage
	release chan struct{}
}

func (b *blockingStore) Store(ctx context.Context, r *results.Record) error {
	<-b.release
	return b.MemoryStorage.Store(ctx, r)
}

type fakeMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *fakeMetrics) RecordWrite(result string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *fakeMetrics) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.results...)
}

// TestRecorder_Record tests that a completion is stored once after Close.
func TestRecorder_Record(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.AsyncBuffer = 10

	recorder := NewRecorder(store, config)

	recorder.Record(context.Background(), Completion{
		RequestID: "req-123",
		Operation: "analyze",
		Files:     []File{{Name: "lease.pdf", ContentType: "application/pdf", Size: 12288}},
		Body:      []byte(`{"riskLevel":"High","tags":["lease","lease","termination"],"size":"12 KB","type":"pdf"}`),
		Attempts:  3,
		Duration:  7 * time.Second,
	})

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	records, err := store.Query(context.Background(), &results.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.RequestID != "req-123" {
		t.Errorf("Expected RequestID 'req-123', got '%s'", record.RequestID)
	}
	if record.Status != results.StatusAnalyzed {
		t.Errorf("Expected status analyzed, got %s", record.Status)
	}
	if record.RiskLevel != results.RiskHigh {
		t.Errorf("Expected risk high, got %q", record.RiskLevel)
	}
	if len(record.Tags) != 2 {
		t.Errorf("Expected 2 normalized tags, got %v", record.Tags)
	}
	if record.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", record.Attempts)
	}
}

// TestRecorder_Disabled tests that a disabled recorder stores nothing.
func TestRecorder_Disabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.Enabled = false

	recorder := NewRecorder(store, config)
	recorder.Record(context.Background(), Completion{RequestID: "req-1", Operation: "chat"})
	_ = recorder.Close()

	if store.Len() != 0 {
		t.Errorf("Expected 0 records, got %d", store.Len())
	}
}

// TestRecorder_WriteFailure tests that a failing store is tried exactly once.
func TestRecorder_WriteFailure(t *testing.T) {
	store := &failingStore{}
	metrics := &fakeMetrics{}

	recorder := NewRecorder(store, DefaultConfig(), WithMetrics(metrics))
	recorder.Record(context.Background(), Completion{RequestID: "req-1", Operation: "analyze"})
	_ = recorder.Close()

	if got := store.calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 write attempt, got %d", got)
	}
	got := metrics.snapshot()
	if len(got) != 1 || got[0] != "error" {
		t.Errorf("Expected [error], got %v", got)
	}
}

// TestRecorder_Overflow tests that a full buffer never drops a record.
func TestRecorder_Overflow(t *testing.T) {
	store := &blockingStore{
		MemoryStorage: storage.NewMemoryStorage(),
		release:       make(chan struct{}),
	}
	config := DefaultConfig()
	config.AsyncBuffer = 1
	config.Workers = 1

	recorder := NewRecorder(store, config)

	const n = 10
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			recorder.Record(context.Background(), Completion{RequestID: "req", Operation: "chat"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record() blocked on a full buffer")
	}

	close(store.release)
	_ = recorder.Close()

	if got := store.Len(); got != n {
		t.Errorf("Expected %d records, got %d", n, got)
	}
}

// TestRecorder_CloseIdempotent tests that Close can be called twice.
func TestRecorder_CloseIdempotent(t *testing.T) {
	recorder := NewRecorder(storage.NewMemoryStorage(), nil)
	if err := recorder.Close(); err != nil {
		t.Fatalf("first Close() failed: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
}

func TestBuildRecord(t *testing.T) {
	tests := []struct {
		name       string
		completion Completion
		wantTitle  string
		wantStatus results.Status
		wantSize   string
		wantType   string
		wantKind   string
	}{
		{
			name: "analyze success without metadata",
			completion: Completion{
				Operation: "analyze",
				Files:     []File{{Name: "Lease.PDF", Size: 2048}},
				Body:      []byte(`{"summary":"ok"}`),
			},
			wantTitle:  "Lease.PDF",
			wantStatus: results.StatusAnalyzed,
			wantSize:   "2 KB",
			wantType:   "pdf",
		},
		{
			name: "compare",
			completion: Completion{
				Operation: "compare",
				Files: []File{
					{Name: "a.docx", Size: 1024},
					{Name: "b.docx", Size: 1024},
				},
				Body: []byte(`{}`),
			},
			wantTitle:  "a.docx vs b.docx",
			wantStatus: results.StatusAnalyzed,
			wantSize:   "2 KB",
			wantType:   "docx",
		},
		{
			name: "chat",
			completion: Completion{
				Operation:  "chat",
				DocumentID: "doc-9",
				Body:       []byte(`{"answer":"yes"}`),
			},
			wantTitle:  "chat: doc-9",
			wantStatus: results.StatusAnalyzed,
		},
		{
			name: "exhausted",
			completion: Completion{
				Operation: "analyze",
				Files:     []File{{Name: "notes.bin", ContentType: "application/octet-stream", Size: 512}},
				Err:       failure.New(failure.RetriesExhausted, "analyze", "upstream unavailable"),
			},
			wantTitle:  "notes.bin",
			wantStatus: results.StatusFailed,
			wantSize:   "0 KB",
			wantType:   "application/octet-stream",
			wantKind:   "retries_exhausted",
		},
		{
			name: "foreign error",
			completion: Completion{
				Operation: "chat",
				Err:       errors.New("boom"),
			},
			wantTitle:  "chat",
			wantStatus: results.StatusFailed,
			wantKind:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildRecord(tt.completion)
			if r.ID == "" {
				t.Error("Expected generated ID")
			}
			if r.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", r.Title, tt.wantTitle)
			}
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Size != tt.wantSize {
				t.Errorf("Size = %q, want %q", r.Size, tt.wantSize)
			}
			if r.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", r.Type, tt.wantType)
			}
			if r.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", r.ErrorKind, tt.wantKind)
			}
			if tt.wantStatus == results.StatusFailed && r.ErrorMessage == "" {
				t.Error("Expected client message on failed record")
			}
			if r.Tags == nil {
				t.Error("Expected non-nil tags")
			}
		})
	}
}
