package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/quizmaster/pkg/observability"
)

// The JWT secret the original deployment shipped as a fallback. Refusing
// it at startup beats silently signing tokens anyone can forge.
const insecureSecretPlaceholder = "your_secret_key_here"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Auth configuration
	Auth AuthConfig

	// RateLimit configuration
	RateLimit RateLimitConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// StorageConfig holds database settings
type StorageConfig struct {
	// Driver is "postgres" or "sqlite3"
	Driver string
	DSN    string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RateLimitConfig holds login throttling settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	WindowDuration    time.Duration
	BurstSize         int

	// RedisURL enables distributed limiting when set
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables. When
// QUIZMASTER_CONFIG_FILE names a YAML file, its values override the
// environment for the fields it sets.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		RateLimit:     loadRateLimitConfig(),
		Observability: loadObservabilityConfig(),
	}

	if path := os.Getenv("QUIZMASTER_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("QUIZMASTER_HOST", "0.0.0.0"),
		Port:            getEnv("QUIZMASTER_PORT", "8080"),
		ReadTimeout:     getEnvDuration("QUIZMASTER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("QUIZMASTER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("QUIZMASTER_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("QUIZMASTER_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("QUIZMASTER_MAX_BODY_BYTES", 1<<20),
		HealthPort:      getEnv("QUIZMASTER_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads database configuration from environment
func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Driver:          getEnv("QUIZMASTER_DB_DRIVER", "sqlite3"),
		DSN:             getEnv("QUIZMASTER_DB_DSN", "quizmaster.db"),
		MaxOpenConns:    getEnvInt("QUIZMASTER_DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("QUIZMASTER_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("QUIZMASTER_DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// loadAuthConfig loads token and hashing configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SecretKey:  getEnv("SECRET_KEY", ""),
		TokenTTL:   getEnvDuration("QUIZMASTER_TOKEN_TTL", time.Hour),
		BcryptCost: getEnvInt("QUIZMASTER_BCRYPT_COST", 0),
	}
}

// loadRateLimitConfig loads login throttle configuration from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("QUIZMASTER_RATELIMIT_ENABLED", true),
		RequestsPerWindow: getEnvInt("QUIZMASTER_RATELIMIT_REQUESTS", 10),
		WindowDuration:    getEnvDuration("QUIZMASTER_RATELIMIT_WINDOW", time.Minute),
		BurstSize:         getEnvInt("QUIZMASTER_RATELIMIT_BURST", 5),
		RedisURL:          getEnv("QUIZMASTER_REDIS_URL", ""),
		RedisPassword:     getEnv("QUIZMASTER_REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("QUIZMASTER_REDIS_DB", 0),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("QUIZMASTER_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("QUIZMASTER_METRICS_ENABLED", true),
	}
}

// fileConfig mirrors Config with pointer fields so a YAML file can
// override only the values it names.
type fileConfig struct {
	Server struct {
		Host            *string        `yaml:"host"`
		Port            *string        `yaml:"port"`
		ReadTimeout     *time.Duration `yaml:"read_timeout"`
		WriteTimeout    *time.Duration `yaml:"write_timeout"`
		IdleTimeout     *time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout *time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    *int64         `yaml:"max_body_bytes"`
		HealthPort      *string        `yaml:"health_port"`
	} `yaml:"server"`
	Storage struct {
		Driver          *string        `yaml:"driver"`
		DSN             *string        `yaml:"dsn"`
		MaxOpenConns    *int           `yaml:"max_open_conns"`
		MaxIdleConns    *int           `yaml:"max_idle_conns"`
		ConnMaxLifetime *time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`
	Auth struct {
		SecretKey  *string        `yaml:"secret_key"`
		TokenTTL   *time.Duration `yaml:"token_ttl"`
		BcryptCost *int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	RateLimit struct {
		Enabled           *bool          `yaml:"enabled"`
		RequestsPerWindow *int           `yaml:"requests_per_window"`
		WindowDuration    *time.Duration `yaml:"window_duration"`
		BurstSize         *int           `yaml:"burst_size"`
		RedisURL          *string        `yaml:"redis_url"`
		RedisPassword     *string        `yaml:"redis_password"`
		RedisDB           *int           `yaml:"redis_db"`
	} `yaml:"rate_limit"`
	Observability struct {
		LogLevel       *string `yaml:"log_level"`
		MetricsEnabled *bool   `yaml:"metrics_enabled"`
	} `yaml:"observability"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setIf(&c.Server.Host, fc.Server.Host)
	setIf(&c.Server.Port, fc.Server.Port)
	setIf(&c.Server.ReadTimeout, fc.Server.ReadTimeout)
	setIf(&c.Server.WriteTimeout, fc.Server.WriteTimeout)
	setIf(&c.Server.IdleTimeout, fc.Server.IdleTimeout)
	setIf(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout)
	setIf(&c.Server.MaxBodyBytes, fc.Server.MaxBodyBytes)
	setIf(&c.Server.HealthPort, fc.Server.HealthPort)

	setIf(&c.Storage.Driver, fc.Storage.Driver)
	setIf(&c.Storage.DSN, fc.Storage.DSN)
	setIf(&c.Storage.MaxOpenConns, fc.Storage.MaxOpenConns)
	setIf(&c.Storage.MaxIdleConns, fc.Storage.MaxIdleConns)
	setIf(&c.Storage.ConnMaxLifetime, fc.Storage.ConnMaxLifetime)

	setIf(&c.Auth.SecretKey, fc.Auth.SecretKey)
	setIf(&c.Auth.TokenTTL, fc.Auth.TokenTTL)
	setIf(&c.Auth.BcryptCost, fc.Auth.BcryptCost)

	setIf(&c.RateLimit.Enabled, fc.RateLimit.Enabled)
	setIf(&c.RateLimit.RequestsPerWindow, fc.RateLimit.RequestsPerWindow)
	setIf(&c.RateLimit.WindowDuration, fc.RateLimit.WindowDuration)
	setIf(&c.RateLimit.BurstSize, fc.RateLimit.BurstSize)
	setIf(&c.RateLimit.RedisURL, fc.RateLimit.RedisURL)
	setIf(&c.RateLimit.RedisPassword, fc.RateLimit.RedisPassword)
	setIf(&c.RateLimit.RedisDB, fc.RateLimit.RedisDB)

	if fc.Observability.LogLevel != nil {
		c.Observability.LogLevel = parseLogLevel(*fc.Observability.LogLevel)
	}
	setIf(&c.Observability.MetricsEnabled, fc.Observability.MetricsEnabled)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.Auth.SecretKey == insecureSecretPlaceholder {
		return fmt.Errorf("SECRET_KEY is set to the well-known placeholder value, choose a real secret")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requests per window must be positive")
		}
		if c.RateLimit.WindowDuration <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
