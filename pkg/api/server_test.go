package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/quizmaster/pkg/auth"
	"github.com/platinummonkey/quizmaster/pkg/middleware"
	"github.com/platinummonkey/quizmaster/pkg/observability"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

func TestRoutes_RequireToken(t *testing.T) {
	server, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/protected/user"},
		{http.MethodGet, "/protected/admin"},
		{http.MethodGet, "/admin/subjects"},
		{http.MethodPost, "/admin/chapters"},
		{http.MethodGet, "/admin/questions/1"},
		{http.MethodGet, "/admin/scores"},
	}
	for _, p := range paths {
		rec := doRequest(t, server, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
		assert.Equal(t, "Token is missing!", decodeBody(t, rec)["message"], "%s %s", p.method, p.path)
	}
}

func TestRoutes_AdminGate(t *testing.T) {
	server, store := newTestServer(t)
	user := seedUser(t, server, store, "user@x.com", false)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/protected/admin"},
		{http.MethodGet, "/admin/subjects"},
		{http.MethodGet, "/admin/questions"},
		{http.MethodGet, "/admin/questions/1"},
		{http.MethodDelete, "/admin/quizzes/1"},
		{http.MethodGet, "/admin/scores"},
	}
	for _, p := range paths {
		rec := doRequest(t, server, p.method, p.path, user, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", p.method, p.path)
		assert.Equal(t, "Admin access required.", decodeBody(t, rec)["message"], "%s %s", p.method, p.path)
	}
}

func TestProtectedDashboards(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)

	rec := doRequest(t, server, http.MethodGet, "/protected/user", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome Test User, you are authenticated!", decodeBody(t, rec)["message"])

	rec = doRequest(t, server, http.MethodGet, "/protected/admin", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome Test User, you are an admin!", decodeBody(t, rec)["message"])
}

// A freshly registered account can log in and reach the user dashboard but
// not the admin surface.
func TestRegisterLoginFlow(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email":         "a@x.com",
		"password":      "s3cret",
		"full_name":     "Ada",
		"qualification": 10,
		"dob":           "2000-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "a@x.com",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = doRequest(t, server, http.MethodGet, "/protected/user", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome Ada, you are authenticated!", decodeBody(t, rec)["message"])

	rec = doRequest(t, server, http.MethodGet, "/admin/subjects", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required.", decodeBody(t, rec)["message"])
}

func TestListScores(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)

	store.scores = append(store.scores, &storage.Score{
		ID:          1,
		UserID:      7,
		QuizID:      3,
		TotalScored: 8,
		CreatedAt:   time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	})

	rec := doRequest(t, server, http.MethodGet, "/admin/scores", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	scores := decodeBody(t, rec)["scores"].([]interface{})
	require.Len(t, scores, 1)
	score := scores[0].(map[string]interface{})
	assert.Equal(t, float64(7), score["user_id"])
	assert.Equal(t, float64(8), score["total_scored"])
	assert.Equal(t, "2025-06-15T10:30:00Z", score["created_at"])
}

func TestInvalidateUser_DropsCachedIdentity(t *testing.T) {
	server, store := newTestServer(t)
	user := seedUser(t, server, store, "user@x.com", false)

	rec := doRequest(t, server, http.MethodGet, "/admin/subjects", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Promote directly in the store; the cached identity still denies
	store.mu.Lock()
	store.users[1].IsAdmin = true
	store.mu.Unlock()

	rec = doRequest(t, server, http.MethodGet, "/admin/subjects", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	server.InvalidateUser(1)
	rec = doRequest(t, server, http.MethodGet, "/admin/subjects", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithLoginRateLimit(t *testing.T) {
	store := newStubStore()
	logger := observability.NewLogger(observability.ErrorLevel, nil)
	limiter := middleware.NewLoginRateLimitMiddleware(&middleware.RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Hour,
		BurstSize:         0,
	}, logger)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	server := NewServer(store, tokens, hasher, logger, WithLoginRateLimit(limiter))

	body := map[string]interface{}{"email": "a@x.com", "password": "nope"}
	rec := doRequest(t, server, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "Too many login attempts. Please try again later.", decodeBody(t, rec)["error"])
}

func TestWithMetrics(t *testing.T) {
	store := newStubStore()
	logger := observability.NewLogger(observability.ErrorLevel, nil)
	metrics := observability.NewMetrics(nil)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	server := NewServer(store, tokens, hasher, logger, WithMetrics(metrics))

	rec := doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "a@x.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
