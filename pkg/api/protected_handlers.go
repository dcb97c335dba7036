package api

import (
	"fmt"
	"net/http"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/middleware"
)

// userDashboard handles GET /protected/user
func (s *Server) userDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	httputil.WriteMessage(w, http.StatusOK, fmt.Sprintf("Welcome %s, you are authenticated!", user.FullName))
}

// adminDashboard handles GET /protected/admin
func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	httputil.WriteMessage(w, http.StatusOK, fmt.Sprintf("Welcome %s, you are an admin!", user.FullName))
}
