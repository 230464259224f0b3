package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 16 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Upstream defaults
	DefaultUpstreamPoolSize            = 50
	DefaultUpstreamIdleConnTimeout     = 90 * time.Second
	DefaultUpstreamDialTimeout         = 10 * time.Second
	DefaultUpstreamTLSHandshakeTimeout = 10 * time.Second
	DefaultUpstreamAnalyzeTimeout      = 5 * time.Minute
	DefaultUpstreamChatTimeout         = 90 * time.Second
	DefaultUpstreamCompareTimeout      = 5 * time.Minute
	DefaultUpstreamWakeTimeout         = 10 * time.Second
	DefaultUpstreamPrewakeOnUpload     = true
	DefaultUpstreamMaxResponseBytes    = int64(32 << 20)

	// Upload defaults
	DefaultUploadMaxFileBytes    = int64(25 << 20)
	DefaultUploadMemoryThreshold = int64(8 << 20)
	DefaultUploadMaxFiles        = 2

	// Results defaults
	DefaultResultsEnabled          = true
	DefaultResultsBackend          = "sqlite"
	DefaultResultsSQLitePath       = "data/results.db"
	DefaultResultsSQLiteDriver     = "sqlite3"
	DefaultResultsSQLiteMaxOpen    = 10
	DefaultResultsSQLiteMaxIdle    = 5
	DefaultResultsSQLiteWALMode    = true
	DefaultResultsSQLiteBusy       = 5 * time.Second
	DefaultResultsRedisAddress     = "127.0.0.1:6379"
	DefaultResultsRedisKeyPrefix   = "lexiclaire:results:"
	DefaultResultsRedisDialTimeout = 3 * time.Second
	DefaultResultsHTTPTimeout      = 5 * time.Second
	DefaultRecorderAsyncBuffer     = 1000
	DefaultRecorderWorkers         = 2
	DefaultRecorderWriteTimeout    = 5 * time.Second
	DefaultRetentionDays           = 30
	DefaultRetentionSchedule       = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "lexiclaire"
	DefaultMetricsSubsystem   = "gateway"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "lexiclaire-gateway"
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultRetrySchedule is the delay before each upstream attempt.
var DefaultRetrySchedule = []time.Duration{0, 2 * time.Second, 5 * time.Second}

// DefaultRequestDurationBuckets covers chat replies through cold-start
// analyses.
var DefaultRequestDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyUpstreamDefaults(&cfg.Upstream)
	applyUploadDefaults(&cfg.Upload)
	applyResultsDefaults(&cfg.Results)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&s.CORS)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	// An untouched section means the default (enabled); any explicit
	// setting means the operator configured it deliberately.
	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0
		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyUpstreamDefaults(u *UpstreamConfig) {
	if u.PoolSize == 0 {
		u.PoolSize = DefaultUpstreamPoolSize
	}
	if u.IdleConnTimeout == 0 {
		u.IdleConnTimeout = DefaultUpstreamIdleConnTimeout
	}
	if u.DialTimeout == 0 {
		u.DialTimeout = DefaultUpstreamDialTimeout
	}
	if u.TLSHandshakeTimeout == 0 {
		u.TLSHandshakeTimeout = DefaultUpstreamTLSHandshakeTimeout
	}
	if u.Timeouts.Analyze == 0 {
		u.Timeouts.Analyze = DefaultUpstreamAnalyzeTimeout
	}
	if u.Timeouts.Chat == 0 {
		u.Timeouts.Chat = DefaultUpstreamChatTimeout
	}
	if u.Timeouts.Compare == 0 {
		u.Timeouts.Compare = DefaultUpstreamCompareTimeout
	}
	if u.Timeouts.Wake == 0 {
		u.Timeouts.Wake = DefaultUpstreamWakeTimeout
	}
	if len(u.RetrySchedule) == 0 {
		u.RetrySchedule = append([]time.Duration(nil), DefaultRetrySchedule...)
	}
	if u.PrewakeOnUpload == nil {
		u.PrewakeOnUpload = boolPtr(DefaultUpstreamPrewakeOnUpload)
	}
	if u.MaxResponseBytes == 0 {
		u.MaxResponseBytes = DefaultUpstreamMaxResponseBytes
	}
}

func applyUploadDefaults(u *UploadConfig) {
	if u.MaxFileBytes == 0 {
		u.MaxFileBytes = DefaultUploadMaxFileBytes
	}
	if u.MemoryThreshold == 0 {
		u.MemoryThreshold = DefaultUploadMemoryThreshold
	}
	if u.MaxFiles == 0 {
		u.MaxFiles = DefaultUploadMaxFiles
	}
}

func applyResultsDefaults(r *ResultsConfig) {
	if r.Enabled == nil {
		r.Enabled = boolPtr(DefaultResultsEnabled)
	}
	if r.Backend == "" {
		r.Backend = DefaultResultsBackend
	}

	if r.SQLite.Path == "" {
		r.SQLite.Path = DefaultResultsSQLitePath
	}
	if r.SQLite.Driver == "" {
		r.SQLite.Driver = DefaultResultsSQLiteDriver
	}
	if r.SQLite.MaxOpenConns == 0 {
		r.SQLite.MaxOpenConns = DefaultResultsSQLiteMaxOpen
	}
	if r.SQLite.MaxIdleConns == 0 {
		r.SQLite.MaxIdleConns = DefaultResultsSQLiteMaxIdle
	}
	if r.SQLite.WALMode == nil {
		r.SQLite.WALMode = boolPtr(DefaultResultsSQLiteWALMode)
	}
	if r.SQLite.BusyTimeout == 0 {
		r.SQLite.BusyTimeout = DefaultResultsSQLiteBusy
	}

	if r.Redis.Address == "" {
		r.Redis.Address = DefaultResultsRedisAddress
	}
	if r.Redis.KeyPrefix == "" {
		r.Redis.KeyPrefix = DefaultResultsRedisKeyPrefix
	}
	if r.Redis.DialTimeout == 0 {
		r.Redis.DialTimeout = DefaultResultsRedisDialTimeout
	}

	if r.HTTP.Timeout == 0 {
		r.HTTP.Timeout = DefaultResultsHTTPTimeout
	}

	if r.Recorder.AsyncBuffer == 0 {
		r.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if r.Recorder.Workers == 0 {
		r.Recorder.Workers = DefaultRecorderWorkers
	}
	if r.Recorder.WriteTimeout == 0 {
		r.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}

	// RetentionDays 0 is meaningful (keep forever) only when set
	// explicitly; a missing section gets the default window.
	if r.Retention == (RetentionConfig{}) {
		r.Retention.RetentionDays = DefaultRetentionDays
		r.Retention.PruneSchedule = DefaultRetentionSchedule
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Logging.RedactPII == nil {
		t.Logging.RedactPII = boolPtr(DefaultLoggingRedactPII)
	}

	if t.Metrics.Enabled == nil {
		t.Metrics.Enabled = boolPtr(DefaultMetricsEnabled)
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingService
	}
	if t.Tracing.OTLP.Insecure == nil {
		t.Tracing.OTLP.Insecure = boolPtr(DefaultTracingInsecure)
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultTracingTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

func boolPtr(b bool) *bool {
	return &b
}
