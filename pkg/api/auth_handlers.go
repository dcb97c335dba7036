package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

const dateLayout = "2006-01-02"

// register handles POST /auth/register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		FullName      string `json:"full_name"`
		Qualification int    `json:"qualification"`
		DOB           string `json:"dob"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Email and password are required.")
		return
	}

	if req.Qualification < 5 || req.Qualification > 12 {
		httputil.WriteBadRequest(w, "Qualification must be between 5 and 12.")
		return
	}

	dob, err := time.Parse(dateLayout, req.DOB)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid date format. Use YYYY-MM-DD.")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logError(r, err, "failed to hash password")
		httputil.WriteInternalError(w)
		return
	}

	user := &storage.User{
		Email:         req.Email,
		PasswordHash:  hash,
		FullName:      req.FullName,
		Qualification: req.Qualification,
		DOB:           dob,
	}

	// The unique index on email is the authority here; a concurrent
	// registration with the same address loses cleanly.
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			httputil.WriteConflict(w, "User already exists")
			return
		}
		s.logError(r, err, "failed to create user")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "User registered successfully")
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logError(r, err, "failed to look up user")
		httputil.WriteInternalError(w)
		return
	}

	// Unknown email and wrong password produce the same response so the
	// endpoint cannot be used to enumerate accounts
	if user == nil || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.recordLogin(false)
		httputil.WriteUnauthorized(w, "Invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logError(r, err, "failed to issue token")
		httputil.WriteInternalError(w)
		return
	}

	s.recordLogin(true)
	httputil.WriteSuccess(w, map[string]string{"token": token})
}

func (s *Server) recordLogin(success bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordLoginAttempt(success)
	if success {
		s.metrics.RecordTokenIssued()
	}
}
