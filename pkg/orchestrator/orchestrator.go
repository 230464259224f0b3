package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/proxy"
	"lexiclaire/gateway/pkg/results/recorder"
	"lexiclaire/gateway/pkg/upload"
)

// FieldFileAlias is accepted for analyze uploads alongside "document".
const FieldFileAlias = "file"

// Gateway is the upstream surface the orchestrator drives.
type Gateway interface {
	Analyze(ctx context.Context, doc *upload.Payload) (*gateway.Response, error)
	Compare(ctx context.Context, a, b *upload.Payload) (*gateway.Response, error)
	Chat(ctx context.Context, req gateway.ChatRequest) (*gateway.Response, error)
}

// Recorder receives exactly one completion per request. It must not block.
type Recorder interface {
	Record(ctx context.Context, c recorder.Completion)
}

// Metrics receives per-request observations.
type Metrics interface {
	RecordRequest(operation string, status int, duration time.Duration)
	RecordUploadBytes(operation string, bytes int64)
}

// Config holds orchestrator settings.
type Config struct {
	Upload upload.Config

	// CancelOnDisconnect propagates client cancellation to the upstream
	// attempt chain. When false the chain runs to completion.
	CancelOnDisconnect bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator coordinates client calls. It is safe for concurrent use.
type Orchestrator struct {
	gateway  Gateway
	recorder Recorder
	config   Config
	metrics  Metrics
	logger   *slog.Logger
}

// New creates an orchestrator. A nil recorder disables recording.
func New(gw Gateway, rec Recorder, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:  gw,
		recorder: rec,
		config:   cfg,
		logger:   slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the decided client response.
type Result struct {
	// Status is the HTTP status for the client.
	Status int

	// Body is the upstream success body passed through unmodified.
	// Nil on failure.
	Body []byte

	// Message is the client message on failure.
	Message string

	// Err is the terminal failure, nil on success.
	Err error

	Attempts int
	Duration time.Duration
}

// OK reports whether the result carries an upstream body.
func (r *Result) OK() bool {
	return r.Err == nil
}

// AnalyzeInput is one analyze call.
type AnalyzeInput struct {
	Request   *http.Request
	RequestID string
}

// CompareInput is one compare call.
type CompareInput struct {
	Request   *http.Request
	RequestID string
}

// ChatInput is one chat call. The JSON body is decoded by Chat.
type ChatInput struct {
	Request   *http.Request
	RequestID string
}

// call is the state of one request in flight.
type call struct {
	op        gateway.Operation
	requestID string
	start     time.Time
	machine   *machine
	files     []recorder.File
	docID     string
	settled   bool
}

func (o *Orchestrator) begin(op gateway.Operation, requestID string) *call {
	return &call{
		op:        op,
		requestID: requestID,
		start:     time.Now(),
		machine:   newMachine(),
	}
}

// Analyze buffers the uploaded document and sends it upstream.
func (o *Orchestrator) Analyze(ctx context.Context, in AnalyzeInput) *Result {
	c := o.begin(gateway.OpAnalyze, in.RequestID)
	return o.run(ctx, c, func() (*gateway.Response, error) {
		c.machine.to(StateBuffering)

		form, err := upload.ParseForm(in.Request, o.config.Upload)
		if err != nil {
			return nil, err
		}
		defer form.Release()

		c.declare(form, gateway.FieldDocument, FieldFileAlias)
		doc, err := form.Payload(gateway.FieldDocument, FieldFileAlias)
		if err != nil {
			return nil, err
		}
		o.observeUpload(c, doc)

		c.machine.to(StateAttempting)
		return o.gateway.Analyze(o.upstreamContext(ctx), doc)
	})
}

// Compare buffers both uploaded versions and sends them upstream.
func (o *Orchestrator) Compare(ctx context.Context, in CompareInput) *Result {
	c := o.begin(gateway.OpCompare, in.RequestID)
	return o.run(ctx, c, func() (*gateway.Response, error) {
		c.machine.to(StateBuffering)

		form, err := upload.ParseForm(in.Request, o.config.Upload)
		if err != nil {
			return nil, err
		}
		defer form.Release()

		c.declare(form, gateway.FieldFileA)
		c.declare(form, gateway.FieldFileB)

		a, err := form.Payload(gateway.FieldFileA)
		if err != nil {
			return nil, err
		}
		b, err := form.Payload(gateway.FieldFileB)
		if err != nil {
			return nil, err
		}
		o.observeUpload(c, a)
		o.observeUpload(c, b)

		c.machine.to(StateAttempting)
		return o.gateway.Compare(o.upstreamContext(ctx), a, b)
	})
}

// Chat decodes the question and forwards it upstream. A body that is not a
// single JSON object fails in the buffering step and is recorded like any
// other failure.
func (o *Orchestrator) Chat(ctx context.Context, in ChatInput) *Result {
	c := o.begin(gateway.OpChat, in.RequestID)
	return o.run(ctx, c, func() (*gateway.Response, error) {
		c.machine.to(StateBuffering)

		chat, err := proxy.ParseChatRequest(in.Request)
		if err != nil {
			return nil, err
		}
		c.docID = chat.DocumentID

		c.machine.to(StateAttempting)
		return o.gateway.Chat(o.upstreamContext(ctx), chat)
	})
}

// run executes one request body and settles it exactly once. A panic in the
// body is settled as an internal failure, so it still leaves a record, and
// is then re-raised for the recovery middleware.
func (o *Orchestrator) run(ctx context.Context, c *call, body func() (*gateway.Response, error)) *Result {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if !c.settled {
			o.finish(ctx, c, nil, fmt.Errorf("%s: panic: %v", c.op, p))
		}
		panic(p)
	}()

	resp, err := body()
	return o.finish(ctx, c, resp, err)
}

func (o *Orchestrator) upstreamContext(ctx context.Context) context.Context {
	if o.config.CancelOnDisconnect {
		return ctx
	}
	return context.WithoutCancel(ctx)
}

// declare remembers the declared file metadata for the record, whether or
// not buffering succeeds.
func (c *call) declare(form *upload.Form, field string, aliases ...string) {
	if info, ok := form.Declared(field, aliases...); ok {
		c.files = append(c.files, recorder.File{
			Name:        info.Name,
			ContentType: info.ContentType,
			Size:        info.Size,
		})
	}
}

func (o *Orchestrator) observeUpload(c *call, p *upload.Payload) {
	if o.metrics != nil {
		o.metrics.RecordUploadBytes(string(c.op), p.Size)
	}
}

// finish decides the client response, records the completion and returns.
func (o *Orchestrator) finish(ctx context.Context, c *call, resp *gateway.Response, err error) *Result {
	c.settled = true
	res := &Result{}

	if err == nil && resp == nil {
		err = failure.New(failure.PermanentUpstream, string(c.op), "empty upstream response")
	}

	if err != nil {
		c.machine.to(StateFailed)
		fe := failure.As(err)
		res.Status = fe.ClientStatus()
		res.Message = fe.ClientMessage()
		res.Err = err
		res.Attempts = fe.Attempts
	} else {
		c.machine.to(StateSucceeded)
		res.Status = resp.StatusCode
		res.Body = resp.Body
		res.Attempts = resp.Attempts
	}
	res.Duration = time.Since(c.start)

	c.machine.to(StateRecording)
	if o.recorder != nil {
		o.recorder.Record(context.WithoutCancel(ctx), recorder.Completion{
			RequestID:  c.requestID,
			Operation:  string(c.op),
			Files:      c.files,
			DocumentID: c.docID,
			Body:       res.Body,
			Err:        res.Err,
			Attempts:   res.Attempts,
			Duration:   res.Duration,
		})
	}
	c.machine.to(StateDone)

	if o.metrics != nil {
		o.metrics.RecordRequest(string(c.op), res.Status, res.Duration)
	}
	o.log(c, res)

	return res
}

func (o *Orchestrator) log(c *call, res *Result) {
	attrs := []any{
		"operation", c.op,
		"request_id", c.requestID,
		"status", res.Status,
		"attempts", res.Attempts,
		"duration_ms", res.Duration.Milliseconds(),
	}
	if res.Err == nil {
		o.logger.Info("request completed", attrs...)
		return
	}

	attrs = append(attrs, "kind", failure.KindOf(res.Err).String(), "error", res.Err)
	if res.Status >= http.StatusInternalServerError {
		o.logger.Warn("request failed", attrs...)
	} else {
		o.logger.Info("request rejected", attrs...)
	}
}
