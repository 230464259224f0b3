package gateway

import (
	"context"
	"fmt"
	"time"

	"lexiclaire/gateway/pkg/failure"
)

// coldAfter is the number of consecutive failed calls after which the
// backend is considered cold again.
const coldAfter = 3

// warmth is the backend's observed readiness.
type warmth struct {
	Warm                bool
	ConsecutiveFailures int
	LastSuccess         time.Time
	LastCheck           time.Time
	LastError           error
	TotalCalls          int64
	FailedCalls         int64
}

// Warmth is a snapshot of the backend's observed readiness.
type Warmth struct {
	// Warm is true after a successful call and until coldAfter consecutive failures
	Warm bool `json:"warm"`

	// ConsecutiveFailures counts failed calls since the last success
	ConsecutiveFailures int `json:"consecutive_failures"`

	// LastSuccess is the time of the last successful call (zero if none)
	LastSuccess time.Time `json:"last_success,omitempty"`

	// LastError is the message of the most recent failure
	LastError string `json:"last_error,omitempty"`

	// TotalCalls and FailedCalls count logical calls, including wake probes
	TotalCalls  int64 `json:"total_calls"`
	FailedCalls int64 `json:"failed_calls"`
}

// IsWarm reports whether the backend answered recently.
func (c *Client) IsWarm() bool {
	c.warmthMu.RLock()
	defer c.warmthMu.RUnlock()
	return c.warmth.Warm
}

// Warmth returns a snapshot of the backend's observed readiness.
func (c *Client) Warmth() Warmth {
	c.warmthMu.RLock()
	defer c.warmthMu.RUnlock()

	w := Warmth{
		Warm:                c.warmth.Warm,
		ConsecutiveFailures: c.warmth.ConsecutiveFailures,
		LastSuccess:         c.warmth.LastSuccess,
		TotalCalls:          c.warmth.TotalCalls,
		FailedCalls:         c.warmth.FailedCalls,
	}
	if c.warmth.LastError != nil {
		w.LastError = c.warmth.LastError.Error()
	}
	return w
}

// CheckWarm is a readiness check: it fails while the backend is cold.
// It never calls the backend.
func (c *Client) CheckWarm(_ context.Context) error {
	w := c.Warmth()
	switch {
	case w.Warm:
		return nil
	case w.TotalCalls == 0:
		return fmt.Errorf("analysis backend not contacted yet")
	case w.LastError != "":
		return fmt.Errorf("analysis backend cold after %d consecutive failures: %s", w.ConsecutiveFailures, w.LastError)
	default:
		return fmt.Errorf("analysis backend cold after %d consecutive failures", w.ConsecutiveFailures)
	}
}

func (c *Client) markSuccess() {
	c.warmthMu.Lock()
	defer c.warmthMu.Unlock()

	if !c.warmth.Warm {
		c.logger.Info("analysis backend is warm",
			"previous_failures", c.warmth.ConsecutiveFailures,
		)
	}

	now := time.Now()
	c.warmth.Warm = true
	c.warmth.ConsecutiveFailures = 0
	c.warmth.LastError = nil
	c.warmth.LastSuccess = now
	c.warmth.LastCheck = now
	c.warmth.TotalCalls++
}

// markFailure counts a failed logical call. Rejections of well-formed
// upstream replies (4xx) prove the backend is up and do not cool it down.
func (c *Client) markFailure(err error) {
	c.warmthMu.Lock()
	defer c.warmthMu.Unlock()

	c.warmth.TotalCalls++
	c.warmth.FailedCalls++
	c.warmth.LastCheck = time.Now()
	c.warmth.LastError = err

	if fe := failure.As(err); fe.Kind == failure.PermanentUpstream && fe.StatusCode > 0 && fe.StatusCode < 500 {
		return
	}

	c.warmth.ConsecutiveFailures++
	if c.warmth.Warm && c.warmth.ConsecutiveFailures >= coldAfter {
		c.warmth.Warm = false
		c.logger.Warn("analysis backend marked cold",
			"consecutive_failures", c.warmth.ConsecutiveFailures,
			"error", err,
		)
	}
}
