package storage

import "context"

// Store defines the persistence operations the API layer depends on.
// Implementations must return the package sentinel errors (ErrNotFound,
// ErrDuplicate, ErrForeignKey, ErrCheckViolation) for expected failures.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Subject operations
	CreateSubject(ctx context.Context, subject *Subject) error
	ListSubjects(ctx context.Context) ([]*Subject, error)
	GetSubject(ctx context.Context, id int64) (*Subject, error)
	UpdateSubject(ctx context.Context, subject *Subject) error
	DeleteSubject(ctx context.Context, id int64) error

	// Chapter operations
	CreateChapter(ctx context.Context, chapter *Chapter) error
	ListChapters(ctx context.Context) ([]*Chapter, error)
	GetChapter(ctx context.Context, id int64) (*Chapter, error)
	UpdateChapter(ctx context.Context, chapter *Chapter) error
	DeleteChapter(ctx context.Context, id int64) error

	// Quiz operations
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	ListQuizzes(ctx context.Context) ([]*Quiz, error)
	GetQuiz(ctx context.Context, id int64) (*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id int64) error

	// Question operations
	CreateQuestion(ctx context.Context, question *Question) error
	ListQuestions(ctx context.Context) ([]*Question, error)
	GetQuestion(ctx context.Context, id int64) (*Question, error)
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id int64) error

	// Score operations (read-only; attempts are recorded out of band)
	ListScores(ctx context.Context) ([]*Score, error)
}
