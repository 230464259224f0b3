// Package storage provides results.Store backends.
//
//   - memory: process-local, for tests and single-shot runs
//   - sqlite: durable single-node store; driver "sqlite3" (cgo, mattn) or
//     "sqlite" (pure Go, modernc)
//   - redis: record JSON under a key plus a time-scored index set
//   - http: fire-and-forget POST to an external metadata service; write-only
//
// Open selects a backend from Config. Every error a backend returns is a
// *results.StorageError naming the backend and operation.
package storage
