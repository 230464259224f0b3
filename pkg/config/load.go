package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEXICLAIRE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LEXICLAIRE_SECTION_FIELD (e.g., LEXICLAIRE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file: defaults plus environment only.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = &Config{}
		ApplyDefaults(cfg)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	if val := os.Getenv(EnvPrefix + "SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// Upstream overrides
	envString("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	envInt("UPSTREAM_POOL_SIZE", &cfg.Upstream.PoolSize)
	envDuration("UPSTREAM_TIMEOUTS_ANALYZE", &cfg.Upstream.Timeouts.Analyze)
	envDuration("UPSTREAM_TIMEOUTS_CHAT", &cfg.Upstream.Timeouts.Chat)
	envDuration("UPSTREAM_TIMEOUTS_COMPARE", &cfg.Upstream.Timeouts.Compare)
	envDuration("UPSTREAM_TIMEOUTS_WAKE", &cfg.Upstream.Timeouts.Wake)
	if val := os.Getenv(EnvPrefix + "UPSTREAM_RETRY_SCHEDULE"); val != "" {
		if schedule, err := parseSchedule(val); err == nil {
			cfg.Upstream.RetrySchedule = schedule
		}
	}
	envBool("UPSTREAM_CANCEL_ON_DISCONNECT", &cfg.Upstream.CancelOnDisconnect)
	envBoolPtr("UPSTREAM_PREWAKE_ON_UPLOAD", &cfg.Upstream.PrewakeOnUpload)
	envString("UPSTREAM_KEEP_WARM_SCHEDULE", &cfg.Upstream.KeepWarmSchedule)

	// Upload overrides
	envInt64("UPLOAD_MAX_FILE_BYTES", &cfg.Upload.MaxFileBytes)
	envInt64("UPLOAD_MEMORY_THRESHOLD", &cfg.Upload.MemoryThreshold)

	// Results overrides
	envBoolPtr("RESULTS_ENABLED", &cfg.Results.Enabled)
	envString("RESULTS_BACKEND", &cfg.Results.Backend)
	envString("RESULTS_SQLITE_PATH", &cfg.Results.SQLite.Path)
	envString("RESULTS_SQLITE_DRIVER", &cfg.Results.SQLite.Driver)
	envString("RESULTS_REDIS_ADDRESS", &cfg.Results.Redis.Address)
	envString("RESULTS_REDIS_USERNAME", &cfg.Results.Redis.Username)
	envString("RESULTS_REDIS_PASSWORD", &cfg.Results.Redis.Password)
	envInt("RESULTS_REDIS_DB", &cfg.Results.Redis.DB)
	envString("RESULTS_HTTP_URL", &cfg.Results.HTTP.URL)
	envInt("RESULTS_RETENTION_DAYS", &cfg.Results.Retention.RetentionDays)
	envString("RESULTS_RETENTION_PRUNE_SCHEDULE", &cfg.Results.Retention.PruneSchedule)
	envInt64("RESULTS_RETENTION_MAX_RECORDS", &cfg.Results.Retention.MaxRecords)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBoolPtr("TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBoolPtr("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envInt64(key string, dst *int64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envBoolPtr(key string, dst **bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = &b
		}
	}
}

// parseSchedule parses a comma separated list of durations, e.g. "0s,2s,5s".
func parseSchedule(s string) ([]time.Duration, error) {
	parts := splitList(s)
	schedule := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid retry delay %q: %w", p, err)
		}
		schedule = append(schedule, d)
	}
	return schedule, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
