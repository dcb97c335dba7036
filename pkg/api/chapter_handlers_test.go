package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubject(t *testing.T, server *Server, admin, name string, qualification int) int64 {
	t.Helper()
	rec := doRequest(t, server, http.MethodPost, "/admin/subjects", admin, map[string]interface{}{
		"name":          name,
		"qualification": qualification,
		"description":   "seed",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return int64(decodeBody(t, rec)["subject"].(map[string]interface{})["id"].(float64))
}

func seedChapter(t *testing.T, server *Server, admin string, subjectID int64, name string) int64 {
	t.Helper()
	rec := doRequest(t, server, http.MethodPost, "/admin/chapters", admin, map[string]interface{}{
		"name":        name,
		"description": "seed chapter",
		"subject_id":  subjectID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return int64(decodeBody(t, rec)["chapter"].(map[string]interface{})["id"].(float64))
}

func TestCreateChapter(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)

	rec := doRequest(t, server, http.MethodPost, "/admin/chapters", admin, map[string]interface{}{
		"name":        "Algebra",
		"description": "equations",
		"subject_id":  subjectID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Chapter created successfully", body["message"])
	chapter := body["chapter"].(map[string]interface{})
	assert.Equal(t, "Algebra", chapter["name"])
	assert.Equal(t, float64(subjectID), chapter["subject_id"])
}

func TestCreateChapter_MissingFields(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)

	rec := doRequest(t, server, http.MethodPost, "/admin/chapters", admin, map[string]interface{}{
		"name": "Algebra",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", decodeBody(t, rec)["message"])
}

func TestCreateChapter_SubjectMissing(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)

	rec := doRequest(t, server, http.MethodPost, "/admin/chapters", admin, map[string]interface{}{
		"name":        "Algebra",
		"description": "equations",
		"subject_id":  99,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Subject not found.", decodeBody(t, rec)["message"])

	// The failed create must not leave a row behind
	rec = doRequest(t, server, http.MethodGet, "/admin/chapters", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["chapters"])
}

func TestCreateChapter_Duplicate(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)
	seedChapter(t, server, admin, subjectID, "Algebra")

	rec := doRequest(t, server, http.MethodPost, "/admin/chapters", admin, map[string]interface{}{
		"name":        "Algebra",
		"description": "again",
		"subject_id":  subjectID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Chapter already exists", decodeBody(t, rec)["message"])
}

func TestListChapters_EmbedsSubject(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)
	seedChapter(t, server, admin, subjectID, "Algebra")

	rec := doRequest(t, server, http.MethodGet, "/admin/chapters", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	chapters := decodeBody(t, rec)["chapters"].([]interface{})
	require.Len(t, chapters, 1)

	chapter := chapters[0].(map[string]interface{})
	subject := chapter["subject"].(map[string]interface{})
	assert.Equal(t, "Math", subject["name"])
	assert.Equal(t, float64(10), subject["qualification"])
}

func TestUpdateChapter_ReassignSubject(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	firstSubject := seedSubject(t, server, admin, "Math", 10)
	secondSubject := seedSubject(t, server, admin, "Physics", 11)
	chapterID := seedChapter(t, server, admin, firstSubject, "Algebra")

	rec := doRequest(t, server, http.MethodPut, fmt.Sprintf("/admin/chapters/%d", chapterID), admin, map[string]interface{}{
		"subject_id": secondSubject,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	chapter := decodeBody(t, rec)["chapter"].(map[string]interface{})
	assert.Equal(t, float64(secondSubject), chapter["subject_id"])
	// Omitted fields remain
	assert.Equal(t, "Algebra", chapter["name"])
}

func TestUpdateChapter_NewSubjectMissing(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)
	chapterID := seedChapter(t, server, admin, subjectID, "Algebra")

	rec := doRequest(t, server, http.MethodPut, fmt.Sprintf("/admin/chapters/%d", chapterID), admin, map[string]interface{}{
		"subject_id": 99,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "New subject not found.", decodeBody(t, rec)["message"])
}

func TestUpdateChapter_NotFound(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)

	rec := doRequest(t, server, http.MethodPut, "/admin/chapters/99", admin, map[string]interface{}{
		"name": "Renamed",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Chapter not found.", decodeBody(t, rec)["message"])
}

func TestDeleteChapter(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)
	chapterID := seedChapter(t, server, admin, subjectID, "Algebra")

	rec := doRequest(t, server, http.MethodDelete, fmt.Sprintf("/admin/chapters/%d", chapterID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chapter deleted successfully.", decodeBody(t, rec)["message"])
}

func TestDeleteChapter_WithQuizzesBlocked(t *testing.T) {
	server, store := newTestServer(t)
	admin := seedUser(t, server, store, "admin@x.com", true)
	subjectID := seedSubject(t, server, admin, "Math", 10)
	chapterID := seedChapter(t, server, admin, subjectID, "Algebra")

	rec := doRequest(t, server, http.MethodPost, "/admin/quizzes", admin, map[string]interface{}{
		"chapter_id":    chapterID,
		"date_of_quiz":  "2025-01-01",
		"time_duration": "01:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, server, http.MethodDelete, fmt.Sprintf("/admin/chapters/%d", chapterID), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Chapter has quizzes and cannot be deleted.", decodeBody(t, rec)["message"])
}
