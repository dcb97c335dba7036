package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/quizmaster/pkg/auth"
	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/middleware"
	"github.com/platinummonkey/quizmaster/pkg/observability"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

// Server represents our API server
type Server struct {
	store   storage.Store
	router  *mux.Router
	tokens  *auth.TokenService
	hasher  *auth.PasswordHasher
	authMW  *middleware.AuthMiddleware
	logger  *observability.Logger
	metrics *observability.Metrics

	loginLimiter *middleware.LoginRateLimitMiddleware
	maxBodyBytes int64
}

// Option configures optional server behavior
type Option func(*Server)

// WithMetrics instruments requests and auth events
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLoginRateLimit throttles the login endpoint
func WithLoginRateLimit(l *middleware.LoginRateLimitMiddleware) Option {
	return func(s *Server) { s.loginLimiter = l }
}

// WithMaxBodyBytes caps request body size
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// NewServer creates a new API server
func NewServer(store storage.Store, tokens *auth.TokenService, hasher *auth.PasswordHasher, logger *observability.Logger, opts ...Option) *Server {
	s := &Server{
		store:        store,
		router:       mux.NewRouter(),
		tokens:       tokens,
		hasher:       hasher,
		authMW:       middleware.NewAuthMiddleware(tokens, store),
		logger:       logger,
		maxBodyBytes: 1 << 20,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes. Authorization is applied per
// subtree: /auth is public, /protected requires a valid token, and every
// route under /admin passes both the token check and the admin gate.
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware(s.logger))
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(httputil.RecoveryMiddleware(s.logger))
	s.router.Use(httputil.MaxBytesMiddleware(s.maxBodyBytes))

	authRouter := s.router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", s.register).Methods("POST")
	if s.loginLimiter != nil {
		authRouter.Handle("/login", s.loginLimiter.Handler(http.HandlerFunc(s.login))).Methods("POST")
	} else {
		authRouter.HandleFunc("/login", s.login).Methods("POST")
	}

	protected := s.router.PathPrefix("/protected").Subrouter()
	protected.Use(s.authMW.Authenticate)
	protected.HandleFunc("/user", s.userDashboard).Methods("GET")
	protected.Handle("/admin", s.authMW.RequireAdmin(http.HandlerFunc(s.adminDashboard))).Methods("GET")

	admin := s.router.PathPrefix("/admin").Subrouter()
	admin.Use(s.authMW.Authenticate)
	admin.Use(s.authMW.RequireAdmin)

	admin.HandleFunc("/subjects", s.createSubject).Methods("POST")
	admin.HandleFunc("/subjects", s.listSubjects).Methods("GET")
	admin.HandleFunc("/subjects/{id:[0-9]+}", s.updateSubject).Methods("PUT")
	admin.HandleFunc("/subjects/{id:[0-9]+}", s.deleteSubject).Methods("DELETE")

	admin.HandleFunc("/chapters", s.createChapter).Methods("POST")
	admin.HandleFunc("/chapters", s.listChapters).Methods("GET")
	admin.HandleFunc("/chapters/{id:[0-9]+}", s.updateChapter).Methods("PUT")
	admin.HandleFunc("/chapters/{id:[0-9]+}", s.deleteChapter).Methods("DELETE")

	admin.HandleFunc("/quizzes", s.createQuiz).Methods("POST")
	admin.HandleFunc("/quizzes", s.listQuizzes).Methods("GET")
	admin.HandleFunc("/quizzes/{id:[0-9]+}", s.updateQuiz).Methods("PUT")
	admin.HandleFunc("/quizzes/{id:[0-9]+}", s.deleteQuiz).Methods("DELETE")

	admin.HandleFunc("/questions", s.createQuestion).Methods("POST")
	admin.HandleFunc("/questions", s.listQuestions).Methods("GET")
	admin.HandleFunc("/questions/{id:[0-9]+}", s.getQuestion).Methods("GET")
	admin.HandleFunc("/questions/{id:[0-9]+}", s.updateQuestion).Methods("PUT")
	admin.HandleFunc("/questions/{id:[0-9]+}", s.deleteQuestion).Methods("DELETE")

	admin.HandleFunc("/scores", s.listScores).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for route registration in tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// InvalidateUser drops a cached identity after a privilege change
func (s *Server) InvalidateUser(userID int64) {
	s.authMW.Invalidate(userID)
}

func (s *Server) logError(r *http.Request, err error, msg string) {
	observability.FromContext(r.Context()).WithError(err).Error(msg)
}
