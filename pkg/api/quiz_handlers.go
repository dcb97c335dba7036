package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

// parseDuration parses an elapsed "HH:MM" duration into minutes. The hour
// component may exceed 23 since this is a duration, not a clock time.
func parseDuration(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	hours, hErr := strconv.Atoi(parts[0])
	minutes, mErr := strconv.Atoi(parts[1])
	if hErr != nil || mErr != nil || hours < 0 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return hours*60 + minutes, nil
}

// formatDuration renders minutes back as "HH:MM"
func formatDuration(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func serializeQuiz(quiz *storage.Quiz) map[string]interface{} {
	return map[string]interface{}{
		"id":            quiz.ID,
		"chapter_id":    quiz.ChapterID,
		"date_of_quiz":  quiz.DateOfQuiz.Format(dateLayout),
		"time_duration": formatDuration(quiz.DurationMinutes),
		"remarks":       quiz.Remarks,
	}
}

// createQuiz handles POST /admin/quizzes
func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChapterID    int64  `json:"chapter_id"`
		DateOfQuiz   string `json:"date_of_quiz"`
		TimeDuration string `json:"time_duration"`
		Remarks      string `json:"remarks"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.ChapterID == 0 || req.DateOfQuiz == "" || req.TimeDuration == "" {
		httputil.WriteBadRequest(w, "chapter_id, date_of_quiz, and time_duration are required.")
		return
	}

	date, dateErr := time.Parse(dateLayout, req.DateOfQuiz)
	minutes, durErr := parseDuration(req.TimeDuration)
	if dateErr != nil || durErr != nil {
		httputil.WriteBadRequest(w, "Invalid date or time format. Use YYYY-MM-DD for date and HH:MM for time.")
		return
	}

	quiz := &storage.Quiz{
		ChapterID:       req.ChapterID,
		DateOfQuiz:      date,
		DurationMinutes: minutes,
		Remarks:         req.Remarks,
	}

	if err := s.store.CreateQuiz(r.Context(), quiz); err != nil {
		if errors.Is(err, storage.ErrForeignKey) {
			httputil.WriteNotFound(w, "Chapter not found.")
			return
		}
		s.logError(r, err, "failed to create quiz")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"message": "Quiz created successfully.",
		"quiz":    serializeQuiz(quiz),
	})
}

// listQuizzes handles GET /admin/quizzes
func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.store.ListQuizzes(r.Context())
	if err != nil {
		s.logError(r, err, "failed to list quizzes")
		httputil.WriteInternalError(w)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(quizzes))
	for _, quiz := range quizzes {
		serialized = append(serialized, serializeQuiz(quiz))
	}

	httputil.WriteSuccess(w, map[string]interface{}{"quizzes": serialized})
}

// updateQuiz handles PUT /admin/quizzes/{id}. Each field keeps its current
// value when omitted; format validation applies per supplied field.
func (s *Server) updateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		ChapterID    *int64  `json:"chapter_id"`
		DateOfQuiz   *string `json:"date_of_quiz"`
		TimeDuration *string `json:"time_duration"`
		Remarks      *string `json:"remarks"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	quiz, err := s.store.GetQuiz(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "Quiz not found.")
			return
		}
		s.logError(r, err, "failed to load quiz")
		httputil.WriteInternalError(w)
		return
	}

	if req.DateOfQuiz != nil {
		date, err := time.Parse(dateLayout, *req.DateOfQuiz)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid date format. Use YYYY-MM-DD.")
			return
		}
		quiz.DateOfQuiz = date
	}
	if req.TimeDuration != nil {
		minutes, err := parseDuration(*req.TimeDuration)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid time format. Use HH:MM.")
			return
		}
		quiz.DurationMinutes = minutes
	}
	if req.Remarks != nil {
		quiz.Remarks = *req.Remarks
	}
	if req.ChapterID != nil {
		quiz.ChapterID = *req.ChapterID
	}

	if err := s.store.UpdateQuiz(r.Context(), quiz); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Quiz not found.")
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteNotFound(w, "New chapter not found.")
		default:
			s.logError(r, err, "failed to update quiz")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": "Quiz updated successfully.",
		"quiz":    serializeQuiz(quiz),
	})
}

// deleteQuiz handles DELETE /admin/quizzes/{id}
func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteQuiz(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Quiz not found.")
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteConflict(w, "Quiz has questions and cannot be deleted.")
		default:
			s.logError(r, err, "failed to delete quiz")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Quiz deleted successfully.")
}
