package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/results"
)

// Config contains configuration for the recorder.
type Config struct {
	// Enabled enables recording. A disabled recorder discards completions.
	Enabled bool

	// AsyncBuffer is the size of the write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// Workers is the number of goroutines draining the buffer.
	// Default: 2
	Workers int

	// WriteTimeout bounds each store write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		Workers:      2,
		WriteTimeout: 5 * time.Second,
	}
}

// Metrics receives the result of every write attempt.
type Metrics interface {
	RecordWrite(result string, latency time.Duration)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// Recorder writes records asynchronously.
type Recorder struct {
	store      results.Store
	config     *Config
	metrics    Metrics
	recordChan chan *results.Record
	logger     *slog.Logger

	// mu guards closed against concurrent Record and Close
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	workers  sync.WaitGroup
	overflow sync.WaitGroup
}

// NewRecorder creates a recorder writing to store and starts its workers.
func NewRecorder(store results.Store, config *Config, opts ...Option) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		store:      store,
		config:     config,
		recordChan: make(chan *results.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "results.recorder"),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := 0; i < config.Workers; i++ {
		r.workers.Add(1)
		go r.worker()
	}

	r.logger.Info("results recorder initialized",
		"enabled", config.Enabled,
		"async_buffer", config.AsyncBuffer,
		"workers", config.Workers,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds the record for c and schedules exactly one write. It never
// blocks and never fails; ctx only carries request-scoped values.
func (r *Recorder) Record(ctx context.Context, c Completion) {
	if !r.config.Enabled || r.store == nil {
		return
	}

	record := BuildRecord(c)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("recorder closed, writing record directly",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		go r.writeRecord(record)
		return
	}

	select {
	case r.recordChan <- record:
		r.logger.Debug("result record enqueued",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
	default:
		r.logger.Warn("result channel full, writing on overflow goroutine",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		r.overflow.Add(1)
		go func() {
			defer r.overflow.Done()
			r.writeRecord(record)
		}()
	}
}

// Close drains the buffer and waits for every pending write.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.logger.Info("shutting down results recorder")
	r.workers.Wait()
	r.overflow.Wait()
	r.logger.Info("results recorder shut down complete")
	return nil
}

// worker drains the channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.workers.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord makes the single write attempt for a record.
func (r *Recorder) writeRecord(record *results.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.store.Store(ctx, record)
	duration := time.Since(start)

	if err != nil {
		ferr := failure.Wrap(failure.RecordingFailure, "record", err)
		r.logger.Error("failed to store result record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"operation", record.Operation,
			"kind", ferr.Kind.String(),
			"error", err,
		)
		r.observe("error", duration)
		return
	}

	r.logger.Debug("result recorded",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"status", record.Status,
		"duration_ms", duration.Milliseconds(),
	)
	r.observe("ok", duration)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow result write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) observe(result string, d time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordWrite(result, d)
	}
}
