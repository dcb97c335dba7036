package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
)

// listScores handles GET /admin/scores. Attempts are recorded by an
// external quiz-taking system; this service only reports them.
func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.ListScores(r.Context())
	if err != nil {
		s.logError(r, err, "failed to list scores")
		httputil.WriteInternalError(w)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(scores))
	for _, score := range scores {
		serialized = append(serialized, map[string]interface{}{
			"id":           score.ID,
			"user_id":      score.UserID,
			"quiz_id":      score.QuizID,
			"total_scored": score.TotalScored,
			"created_at":   score.CreatedAt.Format(time.RFC3339),
		})
	}

	httputil.WriteSuccess(w, map[string]interface{}{"scores": serialized})
}
