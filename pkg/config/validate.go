package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateUpload(&cfg.Upload)...)
	errs = append(errs, validateResults(&cfg.Results)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	for field, d := range map[string]time.Duration{
		"server.read_timeout":     cfg.ReadTimeout,
		"server.write_timeout":    cfg.WriteTimeout,
		"server.idle_timeout":     cfg.IdleTimeout,
		"server.shutdown_timeout": cfg.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, FieldError{Field: field, Message: "timeout must be positive"})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: fmt.Sprintf("invalid base URL %q: must be an absolute http or https URL", cfg.BaseURL),
		})
	}

	if cfg.PoolSize < 1 {
		errs = append(errs, FieldError{
			Field:   "upstream.pool_size",
			Message: "pool size must be at least 1",
		})
	}

	for field, d := range map[string]time.Duration{
		"upstream.timeouts.analyze": cfg.Timeouts.Analyze,
		"upstream.timeouts.chat":    cfg.Timeouts.Chat,
		"upstream.timeouts.compare": cfg.Timeouts.Compare,
		"upstream.timeouts.wake":    cfg.Timeouts.Wake,
	} {
		if d <= 0 {
			errs = append(errs, FieldError{Field: field, Message: "timeout must be positive"})
		}
	}

	if len(cfg.RetrySchedule) == 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.retry_schedule",
			Message: "retry schedule needs at least one attempt",
		})
	}
	for i, d := range cfg.RetrySchedule {
		if d < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("upstream.retry_schedule[%d]", i),
				Message: "delay must not be negative",
			})
		}
	}

	if cfg.KeepWarmSchedule != "" {
		if _, err := cron.ParseStandard(cfg.KeepWarmSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "upstream.keep_warm_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if cfg.MaxResponseBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_response_bytes",
			Message: "max response bytes must be non-negative",
		})
	}

	return errs
}

func validateUpload(cfg *UploadConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxFileBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "upload.max_file_bytes",
			Message: "max file bytes must be positive",
		})
	}
	if cfg.MemoryThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "upload.memory_threshold",
			Message: "memory threshold must be non-negative",
		})
	}
	if cfg.MaxFiles < 1 {
		errs = append(errs, FieldError{
			Field:   "upload.max_files",
			Message: "max files must be at least 1",
		})
	}

	return errs
}

func validateResults(cfg *ResultsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "results.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
		if cfg.SQLite.Driver != "sqlite3" && cfg.SQLite.Driver != "sqlite" {
			errs = append(errs, FieldError{
				Field:   "results.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite3' or 'sqlite'", cfg.SQLite.Driver),
			})
		}
	case "redis":
		if cfg.Redis.Address == "" {
			errs = append(errs, FieldError{
				Field:   "results.redis.address",
				Message: "address is required for the redis backend",
			})
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, FieldError{
				Field:   "results.redis.db",
				Message: "db must be non-negative",
			})
		}
	case "http":
		if u, err := url.Parse(cfg.HTTP.URL); cfg.HTTP.URL == "" || err != nil || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "results.http.url",
				Message: "an absolute URL is required for the http backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "results.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'sqlite', 'redis', or 'http'", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 || cfg.Recorder.Workers < 0 {
		errs = append(errs, FieldError{
			Field:   "results.recorder",
			Message: "async buffer and workers must be non-negative",
		})
	}

	if cfg.Retention.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "results.retention.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "results.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "results.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if err := ValidateLogLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: err.Error()})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if BoolValue(cfg.Metrics.Enabled, DefaultMetricsEnabled) && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	for field, path := range map[string]string{
		"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
		"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, FieldError{Field: field, Message: "path must start with /"})
		}
	}
	if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be between 0 and 60s",
		})
	}

	return errs
}

// ValidateLogLevel reports whether level is one of debug, info, warn, error.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", level)
}
