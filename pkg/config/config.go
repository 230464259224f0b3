package config

import "time"

// Config is the root configuration structure for the Lexiclaire gateway.
// It contains the client-facing server, the upstream Analysis Backend, upload
// buffering, result recording, and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Upstream contains Analysis Backend connection, timeout, and retry
	// configuration.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Upload contains upload buffering limits.
	Upload UploadConfig `yaml:"upload"`

	// Results contains result record storage, recorder, and retention
	// configuration.
	Results ResultsConfig `yaml:"results"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the client-facing HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including uploaded files.
	// Default: 60s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must cover the whole upstream attempt chain.
	// Default: 16m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the browser.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig contains configuration for the Analysis Backend client.
type UpstreamConfig struct {
	// BaseURL is the Analysis Backend root, e.g. "http://analysis:8000".
	// Required.
	BaseURL string `yaml:"base_url"`

	// PoolSize bounds open connections to the backend.
	// Default: 50
	PoolSize int `yaml:"pool_size"`

	// IdleConnTimeout closes idle pooled connections.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// DialTimeout bounds TCP connection establishment.
	// Default: 10s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// TLSHandshakeTimeout bounds the TLS handshake.
	// Default: 10s
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout"`

	// Timeouts are the per-attempt ceilings for each operation.
	Timeouts UpstreamTimeouts `yaml:"timeouts"`

	// RetrySchedule is the delay before each attempt; its length is the
	// attempt budget.
	// Default: [0s, 2s, 5s]
	RetrySchedule []time.Duration `yaml:"retry_schedule"`

	// CancelOnDisconnect aborts the attempt chain when the client goes away.
	// Default: false
	CancelOnDisconnect bool `yaml:"cancel_on_disconnect"`

	// PrewakeOnUpload fires a background wake probe before analyze and
	// compare.
	// Default: true
	PrewakeOnUpload *bool `yaml:"prewake_on_upload"`

	// KeepWarmSchedule is a cron expression for periodic wake probes.
	// Empty disables keep-warm.
	KeepWarmSchedule string `yaml:"keep_warm_schedule"`

	// MaxResponseBytes caps how much of an upstream body is read.
	// Default: 33554432 (32MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`
}

// UpstreamTimeouts are per-attempt ceilings.
type UpstreamTimeouts struct {
	// Default: 5m
	Analyze time.Duration `yaml:"analyze"`

	// Default: 90s
	Chat time.Duration `yaml:"chat"`

	// Default: 5m
	Compare time.Duration `yaml:"compare"`

	// Default: 10s
	Wake time.Duration `yaml:"wake"`
}

// UploadConfig contains upload buffering limits.
type UploadConfig struct {
	// MaxFileBytes is the per-file size ceiling.
	// Default: 26214400 (25MB)
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// MemoryThreshold is how much of a multipart form is held in memory
	// before spilling to temporary files.
	// Default: 8388608 (8MB)
	MemoryThreshold int64 `yaml:"memory_threshold"`

	// MaxFiles is the number of files one request may carry.
	// Default: 2
	MaxFiles int `yaml:"max_files"`
}

// ResultsConfig contains result record configuration.
type ResultsConfig struct {
	// Enabled controls whether result records are written.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite", "redis", "http"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis contains Redis backend settings.
	Redis RedisConfig `yaml:"redis"`

	// HTTP contains metadata service sink settings.
	HTTP HTTPSinkConfig `yaml:"http"`

	// Recorder contains asynchronous writer settings.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite results backend configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/results.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (mattn, cgo), "sqlite" (modernc, pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig contains Redis results backend configuration.
type RedisConfig struct {
	// Address is host:port.
	// Default: "127.0.0.1:6379"
	Address string `yaml:"address"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix namespaces every key.
	// Default: "lexiclaire:results:"
	KeyPrefix string `yaml:"key_prefix"`

	// TTL expires record keys; 0 keeps them until pruned.
	TTL time.Duration `yaml:"ttl"`

	// DialTimeout bounds connection establishment.
	// Default: 3s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// HTTPSinkConfig contains the external metadata service configuration.
type HTTPSinkConfig struct {
	// URL receives one POST per record. Required for the http backend.
	URL string `yaml:"url"`

	// Timeout bounds each POST.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// Headers are sent with every POST.
	Headers map[string]string `yaml:"headers"`
}

// RecorderConfig contains asynchronous recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the write channel capacity.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// Workers is the number of writer goroutines.
	// Default: 2
	Workers int `yaml:"workers"`

	// WriteTimeout bounds each store write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains result pruning configuration.
type RetentionConfig struct {
	// RetentionDays is how long records are kept; 0 keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression; empty disables scheduled pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the record count; 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. It is reloaded when the
	// configuration file changes.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of emails, tokens, and similar values.
	// Chat questions about contracts routinely carry personal data.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction rule.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "lexiclaire"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines request duration buckets in seconds.
	// Default: [0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "lexiclaire-gateway"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter settings.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure *bool `yaml:"insecure"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the liveness probe path.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// RequireWarmUpstream makes readiness fail while the backend is cold.
	// Default: false
	RequireWarmUpstream bool `yaml:"require_warm_upstream"`
}

// BoolValue dereferences an optional boolean, using def when unset.
func BoolValue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
