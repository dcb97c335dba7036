package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/quizmaster/pkg/auth"
	"github.com/platinummonkey/quizmaster/pkg/observability"
	"github.com/platinummonkey/quizmaster/pkg/storage"
)

// stubStore is an in-memory Store that enforces the same uniqueness,
// referential, and range constraints the SQL schema does, returning the
// storage sentinel errors.
type stubStore struct {
	mu        sync.Mutex
	users     map[int64]*storage.User
	subjects  map[int64]*storage.Subject
	chapters  map[int64]*storage.Chapter
	quizzes   map[int64]*storage.Quiz
	questions map[int64]*storage.Question
	scores    []*storage.Score
	nextID    int64

	// failWith, when set, makes every operation fail
	failWith error
}

func newStubStore() *stubStore {
	return &stubStore{
		users:     make(map[int64]*storage.User),
		subjects:  make(map[int64]*storage.Subject),
		chapters:  make(map[int64]*storage.Chapter),
		quizzes:   make(map[int64]*storage.Quiz),
		questions: make(map[int64]*storage.Question),
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) CreateUser(_ context.Context, user *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if user.Qualification < 5 || user.Qualification > 12 {
		return storage.ErrCheckViolation
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	user.ID = s.id()
	s.users[user.ID] = user
	return nil
}

func (s *stubStore) GetUserByID(_ context.Context, id int64) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, user := range s.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubStore) CreateSubject(_ context.Context, subject *storage.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if subject.Qualification < 5 || subject.Qualification > 12 {
		return storage.ErrCheckViolation
	}
	for _, existing := range s.subjects {
		if existing.Name == subject.Name && existing.Qualification == subject.Qualification {
			return storage.ErrDuplicate
		}
	}
	subject.ID = s.id()
	s.subjects[subject.ID] = subject
	return nil
}

func (s *stubStore) ListSubjects(context.Context) ([]*storage.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]*storage.Subject, 0, len(s.subjects))
	for id := int64(1); id <= s.nextID; id++ {
		if subject, ok := s.subjects[id]; ok {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s *stubStore) GetSubject(_ context.Context, id int64) (*storage.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	subject, ok := s.subjects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *subject
	return &copy, nil
}

func (s *stubStore) UpdateSubject(_ context.Context, subject *storage.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.subjects[subject.ID]; !ok {
		return storage.ErrNotFound
	}
	if subject.Qualification < 5 || subject.Qualification > 12 {
		return storage.ErrCheckViolation
	}
	for _, existing := range s.subjects {
		if existing.ID != subject.ID && existing.Name == subject.Name && existing.Qualification == subject.Qualification {
			return storage.ErrDuplicate
		}
	}
	stored := *subject
	s.subjects[subject.ID] = &stored
	return nil
}

func (s *stubStore) DeleteSubject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.subjects[id]; !ok {
		return storage.ErrNotFound
	}
	for _, chapter := range s.chapters {
		if chapter.SubjectID == id {
			return storage.ErrForeignKey
		}
	}
	delete(s.subjects, id)
	return nil
}

func (s *stubStore) CreateChapter(_ context.Context, chapter *storage.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.subjects[chapter.SubjectID]; !ok {
		return storage.ErrForeignKey
	}
	for _, existing := range s.chapters {
		if existing.Name == chapter.Name && existing.SubjectID == chapter.SubjectID {
			return storage.ErrDuplicate
		}
	}
	chapter.ID = s.id()
	s.chapters[chapter.ID] = chapter
	return nil
}

func (s *stubStore) ListChapters(context.Context) ([]*storage.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]*storage.Chapter, 0, len(s.chapters))
	for id := int64(1); id <= s.nextID; id++ {
		if chapter, ok := s.chapters[id]; ok {
			expanded := *chapter
			expanded.Subject = s.subjects[chapter.SubjectID]
			out = append(out, &expanded)
		}
	}
	return out, nil
}

func (s *stubStore) GetChapter(_ context.Context, id int64) (*storage.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	chapter, ok := s.chapters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *chapter
	return &copy, nil
}

func (s *stubStore) UpdateChapter(_ context.Context, chapter *storage.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.chapters[chapter.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.subjects[chapter.SubjectID]; !ok {
		return storage.ErrForeignKey
	}
	for _, existing := range s.chapters {
		if existing.ID != chapter.ID && existing.Name == chapter.Name && existing.SubjectID == chapter.SubjectID {
			return storage.ErrDuplicate
		}
	}
	stored := *chapter
	stored.Subject = nil
	s.chapters[chapter.ID] = &stored
	return nil
}

func (s *stubStore) DeleteChapter(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.chapters[id]; !ok {
		return storage.ErrNotFound
	}
	for _, quiz := range s.quizzes {
		if quiz.ChapterID == id {
			return storage.ErrForeignKey
		}
	}
	delete(s.chapters, id)
	return nil
}

func (s *stubStore) CreateQuiz(_ context.Context, quiz *storage.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.chapters[quiz.ChapterID]; !ok {
		return storage.ErrForeignKey
	}
	quiz.ID = s.id()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *stubStore) ListQuizzes(context.Context) ([]*storage.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]*storage.Quiz, 0, len(s.quizzes))
	for id := int64(1); id <= s.nextID; id++ {
		if quiz, ok := s.quizzes[id]; ok {
			out = append(out, quiz)
		}
	}
	return out, nil
}

func (s *stubStore) GetQuiz(_ context.Context, id int64) (*storage.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *quiz
	return &copy, nil
}

func (s *stubStore) UpdateQuiz(_ context.Context, quiz *storage.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.chapters[quiz.ChapterID]; !ok {
		return storage.ErrForeignKey
	}
	stored := *quiz
	s.quizzes[quiz.ID] = &stored
	return nil
}

func (s *stubStore) DeleteQuiz(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.quizzes[id]; !ok {
		return storage.ErrNotFound
	}
	for _, question := range s.questions {
		if question.QuizID == id {
			return storage.ErrForeignKey
		}
	}
	delete(s.quizzes, id)
	return nil
}

func (s *stubStore) CreateQuestion(_ context.Context, question *storage.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.quizzes[question.QuizID]; !ok {
		return storage.ErrForeignKey
	}
	if question.CorrectOption < 1 || question.CorrectOption > 4 {
		return storage.ErrCheckViolation
	}
	question.ID = s.id()
	s.questions[question.ID] = question
	return nil
}

func (s *stubStore) ListQuestions(context.Context) ([]*storage.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]*storage.Question, 0, len(s.questions))
	for id := int64(1); id <= s.nextID; id++ {
		if question, ok := s.questions[id]; ok {
			out = append(out, question)
		}
	}
	return out, nil
}

func (s *stubStore) GetQuestion(_ context.Context, id int64) (*storage.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	question, ok := s.questions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *question
	return &copy, nil
}

func (s *stubStore) UpdateQuestion(_ context.Context, question *storage.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.questions[question.ID]; !ok {
		return storage.ErrNotFound
	}
	if question.CorrectOption < 1 || question.CorrectOption > 4 {
		return storage.ErrCheckViolation
	}
	stored := *question
	s.questions[question.ID] = &stored
	return nil
}

func (s *stubStore) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.questions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *stubStore) ListScores(context.Context) ([]*storage.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.scores, nil
}

var _ storage.Store = (*stubStore)(nil)

func newTestServer(t *testing.T) (*Server, *stubStore) {
	t.Helper()
	store := newStubStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	logger := observability.NewLogger(observability.ErrorLevel, nil)
	return NewServer(store, tokens, hasher, logger), store
}

// seedUser creates a user directly in the store and returns a valid token
func seedUser(t *testing.T, server *Server, store *stubStore, email string, isAdmin bool) string {
	t.Helper()
	hash, err := server.hasher.Hash("password123")
	require.NoError(t, err)
	user := &storage.User{
		Email:         email,
		PasswordHash:  hash,
		FullName:      "Test User",
		Qualification: 10,
		DOB:           time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAdmin:       isAdmin,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	token, err := server.tokens.Issue(user.ID)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, server *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
