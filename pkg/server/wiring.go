package server

import (
	"time"

	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/results/recorder"
	"lexiclaire/gateway/pkg/results/retention"
	"lexiclaire/gateway/pkg/results/storage"
	"lexiclaire/gateway/pkg/upload"
)

// The functions below translate the YAML configuration into the settings
// structs of each package. They assume config.ApplyDefaults has run.

// GatewayConfig returns the gateway client settings.
func GatewayConfig(cfg *config.Config) gateway.Config {
	u := cfg.Upstream
	return gateway.Config{
		BaseURL:             u.BaseURL,
		PoolSize:            u.PoolSize,
		IdleConnTimeout:     u.IdleConnTimeout,
		DialTimeout:         u.DialTimeout,
		TLSHandshakeTimeout: u.TLSHandshakeTimeout,
		Timeouts: gateway.Timeouts{
			Analyze: u.Timeouts.Analyze,
			Chat:    u.Timeouts.Chat,
			Compare: u.Timeouts.Compare,
			Wake:    u.Timeouts.Wake,
		},
		Schedule:         append([]time.Duration(nil), u.RetrySchedule...),
		PrewakeOnUpload:  config.BoolValue(u.PrewakeOnUpload, true),
		KeepWarmSchedule: u.KeepWarmSchedule,
		MaxResponseBytes: u.MaxResponseBytes,
	}
}

// UploadConfig returns the upload buffering limits.
func UploadConfig(cfg *config.Config) upload.Config {
	return upload.Config{
		MaxBytes:        cfg.Upload.MaxFileBytes,
		MemoryThreshold: cfg.Upload.MemoryThreshold,
		MaxFiles:        cfg.Upload.MaxFiles,
	}
}

// OrchestratorConfig returns the orchestrator settings.
func OrchestratorConfig(cfg *config.Config) orchestrator.Config {
	return orchestrator.Config{
		Upload:             UploadConfig(cfg),
		CancelOnDisconnect: cfg.Upstream.CancelOnDisconnect,
	}
}

// StorageConfig returns the results backend selection.
func StorageConfig(cfg *config.Config) storage.Config {
	r := cfg.Results
	return storage.Config{
		Backend: r.Backend,
		SQLite: &storage.SQLiteConfig{
			Path:         r.SQLite.Path,
			Driver:       r.SQLite.Driver,
			MaxOpenConns: r.SQLite.MaxOpenConns,
			MaxIdleConns: r.SQLite.MaxIdleConns,
			WALMode:      config.BoolValue(r.SQLite.WALMode, true),
			BusyTimeout:  r.SQLite.BusyTimeout,
		},
		Redis: &storage.RedisConfig{
			Address:     r.Redis.Address,
			Username:    r.Redis.Username,
			Password:    r.Redis.Password,
			DB:          r.Redis.DB,
			KeyPrefix:   r.Redis.KeyPrefix,
			TTL:         r.Redis.TTL,
			DialTimeout: r.Redis.DialTimeout,
		},
		HTTP: &storage.HTTPConfig{
			URL:     r.HTTP.URL,
			Timeout: r.HTTP.Timeout,
			Headers: r.HTTP.Headers,
		},
	}
}

// RecorderConfig returns the asynchronous recorder settings.
func RecorderConfig(cfg *config.Config) *recorder.Config {
	r := cfg.Results
	return &recorder.Config{
		Enabled:      config.BoolValue(r.Enabled, true),
		AsyncBuffer:  r.Recorder.AsyncBuffer,
		Workers:      r.Recorder.Workers,
		WriteTimeout: r.Recorder.WriteTimeout,
	}
}

// RetentionConfig returns the pruning settings.
func RetentionConfig(cfg *config.Config) *retention.Config {
	r := cfg.Results.Retention
	return &retention.Config{
		RetentionDays: r.RetentionDays,
		PruneSchedule: r.PruneSchedule,
		MaxRecords:    r.MaxRecords,
	}
}
