package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/quizmaster/pkg/httputil"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

func serializeSubject(subject *storage.Subject) map[string]interface{} {
	return map[string]interface{}{
		"id":            subject.ID,
		"name":          subject.Name,
		"qualification": subject.Qualification,
		"description":   subject.Description,
	}
}

// createSubject handles POST /admin/subjects
func (s *Server) createSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Qualification int    `json:"qualification"`
		Description   string `json:"description"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name == "" || req.Qualification == 0 {
		httputil.WriteBadRequest(w, "Name and qualification are required.")
		return
	}
	if req.Qualification < 5 || req.Qualification > 12 {
		httputil.WriteBadRequest(w, "Qualification must be between 5 and 12.")
		return
	}

	subject := &storage.Subject{
		Name:          req.Name,
		Qualification: req.Qualification,
		Description:   req.Description,
	}

	if err := s.store.CreateSubject(r.Context(), subject); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteBadRequest(w, "Subject already exists for this qualification.")
		case errors.Is(err, storage.ErrCheckViolation):
			httputil.WriteBadRequest(w, "Qualification must be between 5 and 12.")
		default:
			s.logError(r, err, "failed to create subject")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"message": "Subject created successfully.",
		"subject": serializeSubject(subject),
	})
}

// listSubjects handles GET /admin/subjects
func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.store.ListSubjects(r.Context())
	if err != nil {
		s.logError(r, err, "failed to list subjects")
		httputil.WriteInternalError(w)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(subjects))
	for _, subject := range subjects {
		serialized = append(serialized, serializeSubject(subject))
	}

	httputil.WriteSuccess(w, map[string]interface{}{"subjects": serialized})
}

// updateSubject handles PUT /admin/subjects/{id}
func (s *Server) updateSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	// Pointer fields distinguish "absent" from "zero"; omitted fields keep
	// their current values
	var req struct {
		Name          *string `json:"name"`
		Qualification *int    `json:"qualification"`
		Description   *string `json:"description"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	subject, err := s.store.GetSubject(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "Subject not found.")
			return
		}
		s.logError(r, err, "failed to load subject")
		httputil.WriteInternalError(w)
		return
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Qualification != nil {
		if *req.Qualification < 5 || *req.Qualification > 12 {
			httputil.WriteBadRequest(w, "Qualification must be between 5 and 12.")
			return
		}
		subject.Qualification = *req.Qualification
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}

	if err := s.store.UpdateSubject(r.Context(), subject); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Subject not found.")
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteBadRequest(w, "Subject already exists for this qualification.")
		case errors.Is(err, storage.ErrCheckViolation):
			httputil.WriteBadRequest(w, "Qualification must be between 5 and 12.")
		default:
			s.logError(r, err, "failed to update subject")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": "Subject updated successfully.",
		"subject": serializeSubject(subject),
	})
}

// deleteSubject handles DELETE /admin/subjects/{id}
func (s *Server) deleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteSubject(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "Subject not found.")
		case errors.Is(err, storage.ErrForeignKey):
			httputil.WriteConflict(w, "Subject has chapters and cannot be deleted.")
		default:
			s.logError(r, err, "failed to delete subject")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Subject deleted successfully.")
}
