// Package middleware provides the HTTP middleware used by the API server:
// bearer token authentication with a short-lived user cache, an admin
// gate, and login rate limiting in both per-process and Redis-backed
// flavors.
package middleware
