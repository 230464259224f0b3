package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/retry"
)

// Tracer starts spans. *tracing.Tracer and any trace.Tracer satisfy it.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Metrics receives attempt, delay and wake observations.
type Metrics interface {
	retry.Observer
	RecordWake(result string, latency time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the clock used for retry waits.
func WithClock(clock retry.Clock) Option {
	return func(c *Client) { c.scheduler.Clock = clock }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		c.metrics = m
		c.scheduler.Observer = m
	}
}

// WithTracer sets the tracer; the global otel tracer is used otherwise.
func WithTracer(t Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to the Analysis Backend. It is safe for concurrent use.
type Client struct {
	config    Config
	baseURL   string
	http      *http.Client
	transport *http.Transport
	scheduler *retry.Scheduler
	metrics   Metrics
	tracer    Tracer
	logger    *slog.Logger

	warmth   warmth
	warmthMu sync.RWMutex

	// waking is set while a background wake probe is in flight
	waking   atomic.Bool
	wakeWG   sync.WaitGroup
	closed   atomic.Bool
	// wakeMu orders wakeWG.Add against Close
	wakeMu   sync.Mutex
	keepWarm *KeepWarm
}

// New creates a Client with one pooled transport.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// One pool for every operation; the socket ceiling is the pool size.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.PoolSize,
		MaxIdleConnsPerHost:   cfg.PoolSize,
		MaxConnsPerHost:       cfg.PoolSize,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	// No client-level timeout; each attempt carries its class ceiling.
	c := &Client{
		config:    cfg,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		transport: transport,
		http:      &http.Client{Transport: transport},
		scheduler: retry.New(cfg.Schedule),
		tracer:    otel.Tracer("lexiclaire/gateway"),
		logger:    slog.Default().With("component", "gateway"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if cfg.KeepWarmSchedule != "" {
		kw, err := NewKeepWarm(c, cfg.KeepWarmSchedule)
		if err != nil {
			return nil, err
		}
		c.keepWarm = kw
	}

	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Do executes req through the retry scheduler.
//
// On success the returned Response carries the upstream body unmodified.
// Every error is a *failure.Error of kind PermanentUpstream or RetriesExhausted.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+string(req.Operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.operation", string(req.Operation)),
			attribute.String("http.method", req.Method),
			attribute.String("http.route", req.Path),
			attribute.Int("gateway.request_bytes", len(req.Body)),
		),
	)
	defer span.End()

	start := time.Now()
	attempts := 0

	resp, err := retry.Do(ctx, c.scheduler, string(req.Operation), func(ctx context.Context, n int) (*Response, error) {
		attempts = n
		return c.attempt(ctx, req, n)
	})

	latency := time.Since(start)
	span.SetAttributes(
		attribute.Int("gateway.attempts", attempts),
		attribute.Int64("gateway.latency_ms", latency.Milliseconds()),
	)

	if err != nil {
		c.markFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("upstream call failed",
			"operation", req.Operation,
			"attempts", attempts,
			"latency", latency,
			"kind", failure.KindOf(err).String(),
			"error", err,
		)
		return nil, err
	}

	c.markSuccess()
	resp.Latency = latency
	resp.Attempts = attempts
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	c.logger.Debug("upstream call succeeded",
		"operation", req.Operation,
		"attempts", attempts,
		"latency", latency,
		"status", resp.StatusCode,
	)
	return resp, nil
}

// attempt performs exactly one HTTP exchange bounded by the class ceiling.
func (c *Client) attempt(ctx context.Context, req *Request, n int) (*Response, error) {
	ceiling := c.config.Timeouts.For(req.Class)
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "gateway.attempt",
		trace.WithAttributes(
			attribute.String("gateway.operation", string(req.Operation)),
			attribute.Int("gateway.attempt", n),
			attribute.Int64("gateway.ceiling_ms", ceiling.Milliseconds()),
		),
	)
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, &failure.Error{
			Kind:    failure.PermanentUpstream,
			Op:      string(req.Operation),
			Code:    failure.CodeInvalidRequest,
			Message: "could not build upstream request",
			Cause:   err,
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, transportError(req.Operation, err)
	}
	defer httpResp.Body.Close()

	limit := c.config.MaxResponseBytes
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, limit+1))
	if err != nil {
		span.RecordError(err)
		return nil, transportError(req.Operation, fmt.Errorf("read response: %w", err))
	}
	oversize := int64(len(body)) > limit

	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
		if oversize {
			body = body[:limit]
		}
		return nil, statusError(req.Operation, httpResp.StatusCode, body)
	}

	// A success body is passed through whole or not at all.
	if oversize {
		span.SetStatus(codes.Error, "response too large")
		return nil, failure.New(failure.PermanentUpstream, string(req.Operation),
			fmt.Sprintf("upstream response too large (over %d bytes)", limit))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

// transportError classifies a connection-level failure once.
func transportError(op Operation, err error) *failure.Error {
	kind := failure.PermanentUpstream
	if failure.Classify(err) == failure.Transient {
		kind = failure.TransientUpstream
	}
	return &failure.Error{
		Kind:  kind,
		Op:    string(op),
		Code:  failure.Code(err),
		Cause: err,
	}
}

// statusError classifies a non-2xx reply. The raw body never becomes the
// message; only its detail or message field does.
func statusError(op Operation, status int, body []byte) *failure.Error {
	kind := failure.PermanentUpstream
	if failure.ClassifyStatus(status) == failure.Transient {
		kind = failure.TransientUpstream
	}
	return &failure.Error{
		Kind:       kind,
		Op:         string(op),
		StatusCode: status,
		Code:       "http_" + strconv.Itoa(status),
		Message:    upstreamMessage(status, body),
	}
}

// upstreamMessage extracts a client-safe message from an error body. It
// understands {"detail": "..."}, {"detail": [{"msg": "..."}]} and
// {"message": "..."}; anything else yields the status text.
func upstreamMessage(status int, body []byte) string {
	var shape struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &shape) == nil {
		if len(shape.Detail) > 0 {
			var s string
			if json.Unmarshal(shape.Detail, &s) == nil && s != "" {
				return s
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(shape.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
				return items[0].Msg
			}
		}
		if shape.Message != "" {
			return shape.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "upstream status " + strconv.Itoa(status)
}

// Close stops keep-warm probes, waits for in-flight wake probes and closes
// idle connections.
func (c *Client) Close() error {
	c.wakeMu.Lock()
	first := c.closed.CompareAndSwap(false, true)
	c.wakeMu.Unlock()
	if !first {
		return nil
	}
	if c.keepWarm != nil {
		c.keepWarm.Stop()
	}
	c.wakeWG.Wait()
	c.http.CloseIdleConnections()
	c.logger.Info("gateway client closed")
	return nil
}
