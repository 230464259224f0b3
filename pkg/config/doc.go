// Package config provides configuration management for the Lexiclaire gateway.
//
// This package handles loading, validating, and watching configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("lexiclaire.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("lexiclaire.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LEXICLAIRE_SECTION_FIELD:
//
//   - LEXICLAIRE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LEXICLAIRE_UPSTREAM_BASE_URL overrides upstream.base_url
//   - LEXICLAIRE_UPSTREAM_RETRY_SCHEDULE="0s,2s,5s" overrides upstream.retry_schedule
//   - LEXICLAIRE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and, after a short
// debounce, reloads and re-validates it. Only settings that are safe to change
// at runtime are applied by the caller; the gateway uses it for the log level.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	upstream:
//	  base_url: "https://analysis.internal:8000"
//	  retry_schedule: [0s, 2s, 5s]
//	  keep_warm_schedule: "*/10 * * * *"
//
//	results:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/results.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
