package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/quizmaster/pkg/api"
	"github.com/platinummonkey/quizmaster/pkg/auth"
	"github.com/platinummonkey/quizmaster/pkg/config"
	"github.com/platinummonkey/quizmaster/pkg/middleware"
	"github.com/platinummonkey/quizmaster/pkg/observability"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quizmaster: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Infof("Starting quizmaster (driver=%s)", cfg.Storage.Driver)

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	dialect := storage.DialectSQLite
	if cfg.Storage.Driver == "postgres" {
		dialect = storage.DialectPostgres
	}
	store := storage.NewSQLStore(db, dialect)

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	logger.Info("Schema migration complete")

	tokens := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	var redisClient *redis.Client
	if cfg.RateLimit.RedisURL != "" {
		redisClient, err = openRedis(cfg)
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
	}

	opts := []api.Option{api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes)}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
		opts = append(opts, api.WithMetrics(metrics))
	}

	if cfg.RateLimit.Enabled {
		limitCfg := &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			WindowDuration:    cfg.RateLimit.WindowDuration,
			BurstSize:         cfg.RateLimit.BurstSize,
		}
		var limiter *middleware.LoginRateLimitMiddleware
		if redisClient != nil {
			distributed := middleware.NewDistributedRateLimiter(redisClient, limitCfg, "quizmaster")
			limiter = middleware.NewDistributedLoginRateLimitMiddleware(distributed, logger)
			logger.Info("Login rate limiting enabled (distributed)")
		} else {
			limiter = middleware.NewLoginRateLimitMiddleware(limitCfg, logger)
			logger.Info("Login rate limiting enabled (local)")
		}
		cleanupCtx, stopCleanup := context.WithCancel(context.Background())
		defer stopCleanup()
		limiter.StartCleanup(cleanupCtx)
		opts = append(opts, api.WithLoginRateLimit(limiter))
	}

	server := api.NewServer(store, tokens, hasher, logger, opts...)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := startHealthServer(cfg, logger, db, redisClient, metrics)

	stopStats := make(chan struct{})
	if metrics != nil {
		go func() {
			defer observability.RecoverPanic(logger, "db-stats-collector")
			metrics.CollectDBStats(db, 15*time.Second, stopStats)
		}()
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		close(stopStats)
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		if redisClient != nil {
			return redisClient.Close()
		}
		return nil
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})

	go func() {
		logger.Infof("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
		}
	}()

	return shutdown.WaitForShutdown()
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Storage.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(cfg.RateLimit.RedisURL, "redis://") || strings.HasPrefix(cfg.RateLimit.RedisURL, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.RateLimit.RedisURL,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// startHealthServer serves liveness, readiness, and metrics on a
// separate port so probes stay off the public listener.
func startHealthServer(cfg *config.Config, logger *observability.Logger, db *sql.DB, redisClient *redis.Client, metrics *observability.Metrics) *http.Server {
	mux := http.NewServeMux()
	observability.RegisterHealthRoutes(mux, observability.NewHealthChecker(db, redisClient))
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	srv := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Health endpoints on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	return srv
}
