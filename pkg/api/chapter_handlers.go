package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

func serializeChapter(chapter *storage.Chapter) map[string]interface{} {
	out := map[string]interface{}{
		"id":          chapter.ID,
		"name":        chapter.Name,
		"description": chapter.Description,
		"subject_id":  chapter.SubjectID,
	}
	if chapter.Subject != nil {
		out["subject"] = serializeSubject(chapter.Subject)
	}
	return out
}

// createChapter handles POST /admin/chapters
func (s *Server) createChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		SubjectID   int64  `json:"subject_id"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name == "" || req.Description == "" || req.SubjectID == 0 {
		httputil.WriteBadRequest(w, "All fields are required")
		return
	}

	chapter := &storage.Chapter{
		Name:        req.Name,
		Description: req.Description,
		SubjectID:   req.SubjectID,
	}

	if err := s.store.CreateChapter(r.Context(), chapter); err != nil {
		switch {
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteNotFound(w, "Subject not found.")
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteBadRequest(w, "Chapter already exists")
		default:
			s.logError(r, err, "failed to create chapter")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"message": "Chapter created successfully",
		"chapter": serializeChapter(chapter),
	})
}

// listChapters handles GET /admin/chapters, embedding the owning subject
func (s *Server) listChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.store.ListChapters(r.Context())
	if err != nil {
		s.logError(r, err, "failed to list chapters")
		httputil.WriteInternalError(w)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(chapters))
	for _, chapter := range chapters {
		serialized = append(serialized, serializeChapter(chapter))
	}

	httputil.WriteSuccess(w, map[string]interface{}{"chapters": serialized})
}

// updateChapter handles PUT /admin/chapters/{id}
func (s *Server) updateChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		SubjectID   *int64  `json:"subject_id"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	chapter, err := s.store.GetChapter(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "Chapter not found.")
			return
		}
		s.logError(r, err, "failed to load chapter")
		httputil.WriteInternalError(w)
		return
	}

	if req.Name != nil {
		chapter.Name = *req.Name
	}
	if req.Description != nil {
		chapter.Description = *req.Description
	}
	if req.SubjectID != nil {
		chapter.SubjectID = *req.SubjectID
	}

	if err := s.store.UpdateChapter(r.Context(), chapter); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Chapter not found.")
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteNotFound(w, "New subject not found.")
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteBadRequest(w, "Chapter already exists")
		default:
			s.logError(r, err, "failed to update chapter")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": "Chapter updated successfully.",
		"chapter": serializeChapter(chapter),
	})
}

// deleteChapter handles DELETE /admin/chapters/{id}
func (s *Server) deleteChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteChapter(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Chapter not found.")
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteConflict(w, "Chapter has quizzes and cannot be deleted.")
		default:
			s.logError(r, err, "failed to delete chapter")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Chapter deleted successfully.")
}
