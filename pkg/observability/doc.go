// Package observability provides structured logging, Prometheus metrics,
// health probes, and graceful shutdown for the quizmaster service.
//
// The logger wraps log/slog with a JSON handler and supports field chaining:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("user authenticated")
//
// Metrics are registered against a private prometheus.Registry and exposed
// on the health listener via Metrics.Handler. The HealthChecker probes the
// database (and redis when the distributed login limiter is configured) and
// serves kubernetes-style /health/live and /health/ready endpoints.
package observability
