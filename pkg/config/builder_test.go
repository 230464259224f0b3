package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		Upstream: UpstreamConfig{BaseURL: "http://127.0.0.1:8000"},
	}
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithBaseURL sets the upstream base URL.
func (b *ConfigBuilder) WithBaseURL(url string) *ConfigBuilder {
	b.cfg.Upstream.BaseURL = url
	return b
}

// WithRetrySchedule sets the upstream retry schedule.
func (b *ConfigBuilder) WithRetrySchedule(delays ...time.Duration) *ConfigBuilder {
	b.cfg.Upstream.RetrySchedule = delays
	return b
}

// WithResultsBackend sets the results backend.
func (b *ConfigBuilder) WithResultsBackend(backend string) *ConfigBuilder {
	b.cfg.Results.Backend = backend
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}
