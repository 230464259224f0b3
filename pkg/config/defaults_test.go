package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"server.listen_address", cfg.Server.ListenAddress, DefaultListenAddress},
		{"server.write_timeout", cfg.Server.WriteTimeout, DefaultWriteTimeout},
		{"server.cors.enabled", cfg.Server.CORS.Enabled, true},
		{"upstream.pool_size", cfg.Upstream.PoolSize, 50},
		{"upstream.timeouts.analyze", cfg.Upstream.Timeouts.Analyze, 5 * time.Minute},
		{"upstream.timeouts.chat", cfg.Upstream.Timeouts.Chat, 90 * time.Second},
		{"upstream.timeouts.wake", cfg.Upstream.Timeouts.Wake, 10 * time.Second},
		{"upstream.prewake_on_upload", BoolValue(cfg.Upstream.PrewakeOnUpload, false), true},
		{"upload.max_file_bytes", cfg.Upload.MaxFileBytes, int64(25 << 20)},
		{"results.enabled", BoolValue(cfg.Results.Enabled, false), true},
		{"results.backend", cfg.Results.Backend, "sqlite"},
		{"results.sqlite.driver", cfg.Results.SQLite.Driver, "sqlite3"},
		{"results.redis.key_prefix", cfg.Results.Redis.KeyPrefix, "lexiclaire:results:"},
		{"results.retention.retention_days", cfg.Results.Retention.RetentionDays, 30},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, "info"},
		{"telemetry.metrics.namespace", cfg.Telemetry.Metrics.Namespace, "lexiclaire"},
		{"telemetry.tracing.service_name", cfg.Telemetry.Tracing.ServiceName, "lexiclaire-gateway"},
		{"telemetry.health.readiness_path", cfg.Telemetry.Health.ReadinessPath, "/ready"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	want := []time.Duration{0, 2 * time.Second, 5 * time.Second}
	if len(cfg.Upstream.RetrySchedule) != len(want) {
		t.Fatalf("retry schedule = %v, want %v", cfg.Upstream.RetrySchedule, want)
	}
	for i := range want {
		if cfg.Upstream.RetrySchedule[i] != want[i] {
			t.Errorf("retry schedule[%d] = %v, want %v", i, cfg.Upstream.RetrySchedule[i], want[i])
		}
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Upstream.RetrySchedule[0] = time.Second
	ApplyDefaults(cfg)

	if cfg.Upstream.RetrySchedule[0] != time.Second {
		t.Error("ApplyDefaults overwrote a set value")
	}
	if DefaultRetrySchedule[0] != 0 {
		t.Error("ApplyDefaults aliased the package default schedule")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	off := false
	cfg := &Config{
		Upstream: UpstreamConfig{PrewakeOnUpload: &off},
		Results: ResultsConfig{
			Enabled:   &off,
			Retention: RetentionConfig{MaxRecords: 500},
		},
		Server: ServerConfig{CORS: CORSConfig{AllowedOrigins: []string{"https://app.lexiclaire.io"}}},
	}
	ApplyDefaults(cfg)

	if BoolValue(cfg.Upstream.PrewakeOnUpload, true) {
		t.Error("explicit prewake_on_upload=false was overridden")
	}
	if BoolValue(cfg.Results.Enabled, true) {
		t.Error("explicit results.enabled=false was overridden")
	}
	if cfg.Results.Retention.RetentionDays != 0 {
		t.Errorf("retention days = %d, want 0 when the section is set", cfg.Results.Retention.RetentionDays)
	}
	if cfg.Server.CORS.Enabled {
		t.Error("CORS enabled although the section was configured without enabling it")
	}
}
