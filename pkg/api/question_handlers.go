package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

// The question endpoints respond with an "error" key on failure rather
// than "message", a wire-format quirk clients already depend on.

func serializeQuestion(question *storage.Question) map[string]interface{} {
	return map[string]interface{}{
		"id":                 question.ID,
		"quiz_id":            question.QuizID,
		"question_statement": question.QuestionStatement,
		"options":            []string{question.Option1, question.Option2, question.Option3, question.Option4},
		"correct_option":     question.CorrectOption,
	}
}

// createQuestion handles POST /admin/questions
func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuizID            int64   `json:"quiz_id"`
		QuestionStatement string  `json:"question_statement"`
		Option1           *string `json:"option1"`
		Option2           *string `json:"option2"`
		Option3           *string `json:"option3"`
		Option4           *string `json:"option4"`
		CorrectOption     int     `json:"correct_option"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.QuizID == 0 || req.QuestionStatement == "" || req.CorrectOption == 0 ||
		req.Option1 == nil || req.Option2 == nil || req.Option3 == nil || req.Option4 == nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if req.CorrectOption < 1 || req.CorrectOption > 4 {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "correct_option must be between 1 and 4")
		return
	}

	question := &storage.Question{
		QuizID:            req.QuizID,
		QuestionStatement: req.QuestionStatement,
		Option1:           *req.Option1,
		Option2:           *req.Option2,
		Option3:           *req.Option3,
		Option4:           *req.Option4,
		CorrectOption:     req.CorrectOption,
	}

	if err := s.store.CreateQuestion(r.Context(), question); err != nil {
		switch {
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteErrorMessage(w, http.StatusNotFound, "Quiz not found")
		case errors.Is(err, storage.ErrCheckViolation):
			httputil.WriteErrorMessage(w, http.StatusBadRequest, "correct_option must be between 1 and 4")
		default:
			s.logError(r, err, "failed to create question")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"message":     "Question added successfully",
		"question_id": question.ID,
	})
}

// listQuestions handles GET /admin/questions
func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.store.ListQuestions(r.Context())
	if err != nil {
		s.logError(r, err, "failed to list questions")
		httputil.WriteInternalError(w)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(questions))
	for _, question := range questions {
		serialized = append(serialized, serializeQuestion(question))
	}

	httputil.WriteSuccess(w, map[string]interface{}{"questions": serialized})
}

// getQuestion handles GET /admin/questions/{id}
func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	question, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteErrorMessage(w, http.StatusNotFound, "Question not found")
			return
		}
		s.logError(r, err, "failed to load question")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, serializeQuestion(question))
}

// updateQuestion handles PUT /admin/questions/{id}
func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		QuestionStatement *string `json:"question_statement"`
		Option1           *string `json:"option1"`
		Option2           *string `json:"option2"`
		Option3           *string `json:"option3"`
		Option4           *string `json:"option4"`
		CorrectOption     *int    `json:"correct_option"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	question, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteErrorMessage(w, http.StatusNotFound, "Question not found")
			return
		}
		s.logError(r, err, "failed to load question")
		httputil.WriteInternalError(w)
		return
	}

	if req.QuestionStatement != nil {
		question.QuestionStatement = *req.QuestionStatement
	}
	if req.Option1 != nil {
		question.Option1 = *req.Option1
	}
	if req.Option2 != nil {
		question.Option2 = *req.Option2
	}
	if req.Option3 != nil {
		question.Option3 = *req.Option3
	}
	if req.Option4 != nil {
		question.Option4 = *req.Option4
	}
	if req.CorrectOption != nil {
		if *req.CorrectOption < 1 || *req.CorrectOption > 4 {
			httputil.WriteErrorMessage(w, http.StatusBadRequest, "correct_option must be between 1 and 4")
			return
		}
		question.CorrectOption = *req.CorrectOption
	}

	if err := s.store.UpdateQuestion(r.Context(), question); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteErrorMessage(w, http.StatusNotFound, "Question not found")
		case errors.Is(err, storage.ErrCheckViolation):
			httputil.WriteErrorMessage(w, http.StatusBadRequest, "correct_option must be between 1 and 4")
		default:
			s.logError(r, err, "failed to update question")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Question updated successfully")
}

// deleteQuestion handles DELETE /admin/questions/{id}
func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteQuestion(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteErrorMessage(w, http.StatusNotFound, "Question not found")
			return
		}
		s.logError(r, err, "failed to delete question")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Question deleted successfully")
}
