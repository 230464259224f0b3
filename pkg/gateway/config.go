package gateway

import (
	"fmt"
	"net/url"
	"time"

	"lexiclaire/gateway/pkg/retry"
)

// Default pool and timeout settings.
const (
	DefaultPoolSize            = 50
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultDialTimeout         = 10 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultAnalyzeTimeout      = 5 * time.Minute
	DefaultChatTimeout         = 90 * time.Second
	DefaultCompareTimeout      = 5 * time.Minute
	DefaultWakeTimeout         = 10 * time.Second
	DefaultMaxResponseBytes    = 32 << 20
	DefaultUserAgent           = "lexiclaire-gateway"
)

// Timeouts holds the per-attempt ceiling of each request class.
type Timeouts struct {
	Analyze time.Duration
	Chat    time.Duration
	Compare time.Duration
	Wake    time.Duration
}

// For returns the ceiling of class.
func (t Timeouts) For(class TimeoutClass) time.Duration {
	switch class {
	case ClassAnalyze:
		return t.Analyze
	case ClassChat:
		return t.Chat
	case ClassCompare:
		return t.Compare
	case ClassWake:
		return t.Wake
	default:
		return t.Chat
	}
}

// Config configures a Client.
type Config struct {
	// BaseURL is the Analysis Backend root, e.g. "http://analysis:8000"
	BaseURL string

	// PoolSize bounds open connections to the backend
	PoolSize int

	// IdleConnTimeout closes pooled connections idle for this long
	IdleConnTimeout time.Duration

	// DialTimeout bounds TCP connection establishment
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake
	TLSHandshakeTimeout time.Duration

	// Timeouts are the per-attempt ceilings by request class
	Timeouts Timeouts

	// Schedule is the retry delay table; retry.DefaultSchedule when empty
	Schedule []time.Duration

	// PrewakeOnUpload fires a background wake before analyze and compare
	PrewakeOnUpload bool

	// KeepWarmSchedule is a cron expression for periodic wake probes (optional)
	KeepWarmSchedule string

	// MaxResponseBytes caps the upstream response body read into memory.
	// A larger success body fails the call instead of being cut short.
	MaxResponseBytes int64

	// UserAgent is sent on every upstream request
	UserAgent string
}

// DefaultConfig returns a Config with every default applied and no BaseURL.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.TLSHandshakeTimeout <= 0 {
		c.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout
	}
	if c.Timeouts.Analyze <= 0 {
		c.Timeouts.Analyze = DefaultAnalyzeTimeout
	}
	if c.Timeouts.Chat <= 0 {
		c.Timeouts.Chat = DefaultChatTimeout
	}
	if c.Timeouts.Compare <= 0 {
		c.Timeouts.Compare = DefaultCompareTimeout
	}
	if c.Timeouts.Wake <= 0 {
		c.Timeouts.Wake = DefaultWakeTimeout
	}
	if len(c.Schedule) == 0 {
		c.Schedule = retry.DefaultSchedule()
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("gateway: base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("gateway: invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway: base URL %q must use http or https", c.BaseURL)
	}
	for i, d := range c.Schedule {
		if d < 0 {
			return fmt.Errorf("gateway: retry delay %d is negative", i)
		}
	}
	return nil
}
