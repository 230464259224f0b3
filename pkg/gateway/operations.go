package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lexiclaire/gateway/pkg/failure"
	"lexiclaire/gateway/pkg/upload"
)

// Analyze uploads one document to POST /analyze.
func (c *Client) Analyze(ctx context.Context, doc *upload.Payload) (*Response, error) {
	if doc == nil {
		return nil, failure.Invalid(string(OpAnalyze), upload.NoFileMessage)
	}
	body, err := upload.NewMultipartBody(upload.PartFrom(FieldDocument, doc))
	if err != nil {
		return nil, failure.Wrap(failure.PermanentUpstream, string(OpAnalyze), err)
	}

	c.prewake()
	return c.Do(ctx, &Request{
		Operation:   OpAnalyze,
		Method:      http.MethodPost,
		Path:        PathAnalyze,
		Body:        body.Bytes(),
		ContentType: body.ContentType(),
		Class:       ClassAnalyze,
	})
}

// Compare uploads two document versions to POST /compare.
func (c *Client) Compare(ctx context.Context, a, b *upload.Payload) (*Response, error) {
	if a == nil || b == nil {
		return nil, failure.Invalid(string(OpCompare), "two files are required (fileA and fileB)")
	}
	body, err := upload.NewMultipartBody(
		upload.PartFrom(FieldFileA, a),
		upload.PartFrom(FieldFileB, b),
	)
	if err != nil {
		return nil, failure.Wrap(failure.PermanentUpstream, string(OpCompare), err)
	}

	c.prewake()
	return c.Do(ctx, &Request{
		Operation:   OpCompare,
		Method:      http.MethodPost,
		Path:        PathCompare,
		Body:        body.Bytes(),
		ContentType: body.ContentType(),
		Class:       ClassCompare,
	})
}

// Chat asks a question about an analyzed document via POST /chat.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Response, error) {
	if req.History == nil {
		req.History = []ChatMessage{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &failure.Error{
			Kind:  failure.PermanentUpstream,
			Op:    string(OpChat),
			Code:  failure.CodeInvalidRequest,
			Cause: fmt.Errorf("failed to marshal chat request: %w", err),
		}
	}

	return c.Do(ctx, &Request{
		Operation:   OpChat,
		Method:      http.MethodPost,
		Path:        PathChat,
		Body:        body,
		ContentType: "application/json",
		Class:       ClassChat,
	})
}

// Wake probes GET / once with the wake ceiling. Any 2xx counts as awake.
func (c *Client) Wake(ctx context.Context) error {
	req := &Request{
		Operation: OpWake,
		Method:    http.MethodGet,
		Path:      PathWake,
		Class:     ClassWake,
	}

	ctx, span := c.tracer.Start(ctx, "gateway.wake")
	defer span.End()

	start := time.Now()
	_, err := c.attempt(ctx, req, 1)
	latency := time.Since(start)

	result := "ok"
	if err != nil {
		result = "error"
		c.markFailure(err)
		span.RecordError(err)
	} else {
		c.markSuccess()
	}
	if c.metrics != nil {
		c.metrics.RecordWake(result, latency)
	}
	return err
}

// WakeAsync starts a background wake probe and returns without waiting.
// It returns false when a probe is already in flight or the client is
// closed; the probe's failure is logged, never returned.
func (c *Client) WakeAsync() bool {
	c.wakeMu.Lock()
	if c.closed.Load() || !c.waking.CompareAndSwap(false, true) {
		c.wakeMu.Unlock()
		return false
	}
	c.wakeWG.Add(1)
	c.wakeMu.Unlock()

	go func() {
		defer c.wakeWG.Done()
		defer c.waking.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeouts.Wake)
		defer cancel()

		if err := c.Wake(ctx); err != nil {
			c.logger.Debug("background wake probe failed", "error", err)
			return
		}
		c.logger.Debug("background wake probe succeeded")
	}()
	return true
}

func (c *Client) prewake() {
	if c.config.PrewakeOnUpload {
		c.WakeAsync()
	}
}
