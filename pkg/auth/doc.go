// Package auth provides credential primitives for the quizmaster API:
// bcrypt password hashing and HS256 JWT bearer tokens.
//
// The TokenService signs tokens with a server secret and a fixed TTL
// (default one hour). Validation distinguishes four failure kinds -
// missing, malformed, expired, and invalid signature - which the HTTP
// middleware maps to the client-facing 401 messages.
package auth
