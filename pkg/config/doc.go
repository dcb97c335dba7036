// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. An optional YAML file named by
// QUIZMASTER_CONFIG_FILE overrides the environment for the fields it sets.
//
// # Configuration Structure
//
// Server settings:
//
//	QUIZMASTER_HOST="0.0.0.0"
//	QUIZMASTER_PORT="8080"
//	QUIZMASTER_HEALTH_PORT="9090"
//	QUIZMASTER_READ_TIMEOUT="15s"
//	QUIZMASTER_WRITE_TIMEOUT="15s"
//
// Storage settings:
//
//	QUIZMASTER_DB_DRIVER="sqlite3"  # sqlite3, postgres
//	QUIZMASTER_DB_DSN="quizmaster.db"
//	QUIZMASTER_DB_MAX_OPEN_CONNS="25"
//
// Auth settings:
//
//	SECRET_KEY="..."                # required, placeholder value rejected
//	QUIZMASTER_TOKEN_TTL="1h"
//	QUIZMASTER_BCRYPT_COST="10"
//
// Rate limit settings:
//
//	QUIZMASTER_RATELIMIT_ENABLED="true"
//	QUIZMASTER_RATELIMIT_REQUESTS="10"
//	QUIZMASTER_RATELIMIT_WINDOW="1m"
//	QUIZMASTER_REDIS_URL="redis://localhost:6379"  # enables distributed limiting
//
// Observability settings:
//
//	QUIZMASTER_LOG_LEVEL="info"  # debug, info, warn, error
//	QUIZMASTER_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Driver)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
