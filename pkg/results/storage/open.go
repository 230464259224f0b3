package storage

import (
	"fmt"

	"lexiclaire/gateway/pkg/results"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendHTTP   = "http"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	SQLite  *SQLiteConfig
	Redis   *RedisConfig
	HTTP    *HTTPConfig
}

// Open creates the configured backend.
func Open(cfg Config) (results.Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStorage(), nil
	case BackendSQLite:
		return NewSQLiteStorage(cfg.SQLite)
	case BackendRedis:
		return NewRedisStorage(cfg.Redis)
	case BackendHTTP:
		return NewHTTPStorage(cfg.HTTP)
	default:
		return nil, fmt.Errorf("unknown results backend %q", cfg.Backend)
	}
}
