package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"lexiclaire/gateway/pkg/results"
)

// HTTPConfig configures the HTTP sink backend.
type HTTPConfig struct {
	// URL receives one POST per record.
	URL string

	// Timeout bounds each POST.
	// Default: 5 seconds
	Timeout time.Duration

	// Headers are added to every request, e.g. an API key.
	Headers map[string]string
}

// HTTPStorage posts records to an external metadata service. It is
// write-only: Query, Count and Delete return results.ErrNotSupported.
type HTTPStorage struct {
	client *http.Client
	config *HTTPConfig
	logger *slog.Logger
}

// NewHTTPStorage creates an HTTP sink.
func NewHTTPStorage(config *HTTPConfig) (*HTTPStorage, error) {
	if config == nil || config.URL == "" {
		return nil, results.NewStorageError(BackendHTTP, "open", fmt.Errorf("url is required"))
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &HTTPStorage{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: slog.Default().With("component", "results.storage.http"),
	}, nil
}

// Store posts the record as JSON. Any non-2xx reply is an error.
func (s *HTTPStorage) Store(ctx context.Context, record *results.Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return results.NewStorageError(BackendHTTP, "store", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return results.NewStorageError(BackendHTTP, "store", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return results.NewStorageError(BackendHTTP, "store", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return results.NewStorageError(BackendHTTP, "store", fmt.Errorf("metadata service returned %s", resp.Status))
	}
	return nil
}

// Query is not supported.
func (s *HTTPStorage) Query(ctx context.Context, query *results.Query) ([]*results.Record, error) {
	return nil, results.NewStorageError(BackendHTTP, "query", results.ErrNotSupported)
}

// Count is not supported.
func (s *HTTPStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	return 0, results.NewStorageError(BackendHTTP, "count", results.ErrNotSupported)
}

// Delete is not supported.
func (s *HTTPStorage) Delete(ctx context.Context, query *results.Query) (int64, error) {
	return 0, results.NewStorageError(BackendHTTP, "delete", results.ErrNotSupported)
}

// Ping sends HEAD to the sink URL; any reply below 500 counts as reachable.
func (s *HTTPStorage) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.config.URL, nil)
	if err != nil {
		return results.NewStorageError(BackendHTTP, "ping", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return results.NewStorageError(BackendHTTP, "ping", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return results.NewStorageError(BackendHTTP, "ping", fmt.Errorf("metadata service returned %s", resp.Status))
	}
	return nil
}

// Close closes idle connections.
func (s *HTTPStorage) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
