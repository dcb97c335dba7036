package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/observability"
)

const msgTooManyLogins = "Too many login attempts. Please try again later."

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// WindowDuration is the time window for rate limiting
	WindowDuration time.Duration
	// BurstSize allows temporary bursts above the rate
	BurstSize int
}

// LoginRateLimitConfig returns the limits applied to credential endpoints.
// Tight enough to slow down password guessing without locking out a user
// who fat-fingers a password a few times.
func LoginRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Minute,
		BurstSize:         5,
	}
}

// RateLimiter implements rate limiting using a token bucket per key.
// State is per-process; use DistributedRateLimiter when running more
// than one instance behind a load balancer.
type RateLimiter struct {
	config  *RateLimitConfig
	buckets map[string]*bucket
	mu      sync.RWMutex
}

type bucket struct {
	tokens     int
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = LoginRateLimitConfig()
	}

	return &RateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
	}
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     rl.config.RequestsPerWindow + rl.config.BurstSize,
			lastUpdate: time.Now(),
		}
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastUpdate)

	tokensToAdd := int(elapsed.Seconds() * float64(rl.config.RequestsPerWindow) / rl.config.WindowDuration.Seconds())
	if tokensToAdd > 0 {
		b.tokens += tokensToAdd
		maxTokens := rl.config.RequestsPerWindow + rl.config.BurstSize
		if b.tokens > maxTokens {
			b.tokens = maxTokens
		}
		b.lastUpdate = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Remaining returns the number of remaining tokens for a key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		return rl.config.RequestsPerWindow + rl.config.BurstSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tokens
}

// Cleanup removes buckets idle for two full windows
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastUpdate) > rl.config.WindowDuration*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// StartCleanup starts a background goroutine to cleanup old buckets
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.config.WindowDuration)
	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// LoginRateLimitMiddleware throttles credential endpoints per client IP.
// When a distributed limiter is provided it is preferred, with the local
// limiter unused; Redis errors fail open so an outage never blocks logins.
type LoginRateLimitMiddleware struct {
	local       *RateLimiter
	distributed *DistributedRateLimiter
	logger      *observability.Logger
}

// NewLoginRateLimitMiddleware creates an in-memory login throttle
func NewLoginRateLimitMiddleware(config *RateLimitConfig, logger *observability.Logger) *LoginRateLimitMiddleware {
	return &LoginRateLimitMiddleware{
		local:  NewRateLimiter(config),
		logger: logger,
	}
}

// NewDistributedLoginRateLimitMiddleware creates a Redis-backed login throttle
func NewDistributedLoginRateLimitMiddleware(limiter *DistributedRateLimiter, logger *observability.Logger) *LoginRateLimitMiddleware {
	return &LoginRateLimitMiddleware{
		distributed: limiter,
		logger:      logger,
	}
}

// StartCleanup starts periodic expiry of idle local buckets. Redis-backed
// limiters expire keys server side and need no sweeper.
func (m *LoginRateLimitMiddleware) StartCleanup(ctx context.Context) {
	if m.local != nil {
		m.local.StartCleanup(ctx)
	}
}

// Handler wraps an HTTP handler with login rate limiting
func (m *LoginRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "login:" + ClientIP(r)

		if m.distributed != nil {
			allowed, err := m.distributed.Allow(r.Context(), key)
			if err != nil {
				m.logger.WithError(err).Warn("login rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				m.rateLimitExceeded(w, m.distributed.config)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if !m.local.Allow(key) {
			m.rateLimitExceeded(w, m.local.config)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *LoginRateLimitMiddleware) rateLimitExceeded(w http.ResponseWriter, config *RateLimitConfig) {
	w.Header().Set("Retry-After", fmt.Sprintf("%.0f", config.WindowDuration.Seconds()))
	httputil.WriteTooManyRequests(w, msgTooManyLogins)
}

// ClientIP extracts the originating client address, honoring proxy headers
func ClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	return r.RemoteAddr
}
