package storage

import (
	"context"
	"sort"
	"sync"

	"lexiclaire/gateway/pkg/results"
)

// MemoryStorage keeps records in process memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*results.Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of record.
func (m *MemoryStorage) Store(ctx context.Context, record *results.Record) error {
	if err := ctx.Err(); err != nil {
		return results.NewStorageError(BackendMemory, "store", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return results.NewStorageError(BackendMemory, "store", errClosed)
	}
	cp := *record
	cp.Tags = append([]string(nil), record.Tags...)
	m.records = append(m.records, &cp)
	return nil
}

// Query returns matching records.
func (m *MemoryStorage) Query(ctx context.Context, query *results.Query) ([]*results.Record, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := m.match(query)
	m.mu.RUnlock()

	return page(sortRecords(matched, query), query), nil
}

// Count returns the number of matching records.
func (m *MemoryStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(query))), nil
}

// Delete removes matching records.
func (m *MemoryStorage) Delete(ctx context.Context, query *results.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if query.Matches(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// Ping always succeeds until Close.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return results.NewStorageError(BackendMemory, "ping", errClosed)
	}
	return nil
}

// Close marks the store closed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// match returns records satisfying query. Caller holds m.mu.
func (m *MemoryStorage) match(query *results.Query) []*results.Record {
	var out []*results.Record
	for _, r := range m.records {
		if query.Matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func sortRecords(records []*results.Record, query *results.Query) []*results.Record {
	asc := query != nil && query.SortOrder == "asc"
	sort.SliceStable(records, func(i, j int) bool {
		if asc {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

func page(records []*results.Record, query *results.Query) []*results.Record {
	limit, offset := defaultLimit, 0
	if query != nil {
		if query.Limit > 0 {
			limit = query.Limit
		}
		offset = query.Offset
	}
	if offset >= len(records) {
		return []*results.Record{}
	}
	records = records[offset:]
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// DeleteOldest removes all but the newest keep records.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	excess := int64(len(m.records)) - keep
	if excess <= 0 {
		return 0, nil
	}
	sorted := append([]*results.Record(nil), m.records...)
	sortRecords(sorted, &results.Query{SortOrder: "asc"})
	drop := make(map[*results.Record]bool, excess)
	for _, r := range sorted[:excess] {
		drop[r] = true
	}

	kept := m.records[:0]
	for _, r := range m.records {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return excess, nil
}
