package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platinummonkey/quizmaster/pkg/auth"
	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

const (
	msgTokenMissing  = "Token is missing!"
	msgTokenExpired  = "Token has expired!"
	msgTokenInvalid  = "Invalid token!"
	msgAdminRequired = "Admin access required."
)

const (
	defaultUserCacheSize = 1024
	defaultUserCacheTTL  = 30 * time.Second
)

// UserResolver loads the user a validated token refers to
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (*storage.User, error)
}

type cachedUser struct {
	user      *storage.User
	expiresAt time.Time
}

// AuthMiddleware validates bearer tokens and attaches the resolved user to
// the request context. Resolved users are cached briefly so a burst of
// requests from the same session does not hit the database per request.
type AuthMiddleware struct {
	tokens *auth.TokenService
	users  UserResolver
	cache  *lru.Cache[int64, cachedUser]
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthMiddleware creates an authentication middleware
func NewAuthMiddleware(tokens *auth.TokenService, users UserResolver) *AuthMiddleware {
	// lru.New only fails on a non-positive size
	cache, _ := lru.New[int64, cachedUser](defaultUserCacheSize)
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		cache:  cache,
		ttl:    defaultUserCacheTTL,
		now:    time.Now,
	}
}

// Authenticate requires a valid "Bearer <token>" Authorization header.
// The token scheme is not checked, only the second field is read.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteUnauthorized(w, msgTokenMissing)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) < 2 || parts[1] == "" {
			httputil.WriteUnauthorized(w, msgTokenMissing)
			return
		}

		userID, err := m.tokens.Validate(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				httputil.WriteUnauthorized(w, msgTokenExpired)
				return
			}
			httputil.WriteUnauthorized(w, msgTokenInvalid)
			return
		}

		user, err := m.resolveUser(r.Context(), userID)
		if err != nil {
			// A token for a deleted user is indistinguishable from a
			// forged one as far as the client is concerned
			httputil.WriteUnauthorized(w, msgTokenInvalid)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin users. It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			httputil.WriteUnauthorized(w, msgTokenMissing)
			return
		}
		if !user.IsAdmin {
			httputil.WriteForbidden(w, msgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolveUser(ctx context.Context, userID int64) (*storage.User, error) {
	if entry, ok := m.cache.Get(userID); ok && m.now().Before(entry.expiresAt) {
		return entry.user, nil
	}

	user, err := m.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.cache.Add(userID, cachedUser{user: user, expiresAt: m.now().Add(m.ttl)})
	return user, nil
}

// Invalidate drops a user from the resolver cache, for use after profile
// or privilege changes.
func (m *AuthMiddleware) Invalidate(userID int64) {
	m.cache.Remove(userID)
}

// UserFromContext returns the authenticated user, or nil outside an
// Authenticate-wrapped handler.
func UserFromContext(ctx context.Context) *storage.User {
	user, _ := ctx.Value(userContextKey).(*storage.User)
	return user
}

// ContextWithUser attaches a user to the context. Exposed for handler tests.
func ContextWithUser(ctx context.Context, user *storage.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
