package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Dialect identifies the SQL driver in use
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// SQLStore implements Store over database/sql. Both the postgres (lib/pq)
// and sqlite (mattn/go-sqlite3) drivers are supported; both accept ordinal
// $n placeholders and RETURNING clauses.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore creates a store for the given database handle
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		now:     time.Now,
	}
}

// DB exposes the underlying handle for health checks and pool metrics
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// User operations

// CreateUser inserts a user. A duplicate email yields ErrDuplicate from the
// unique index, regardless of concurrent registrations.
func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	user.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, qualification, dob, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, user.Email, user.PasswordHash, user.FullName, user.Qualification, user.DOB, user.IsAdmin, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, qualification, dob, is_admin, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Qualification, &user.DOB, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", translateConstraint(err))
	}
	return user, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, qualification, dob, is_admin, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Qualification, &user.DOB, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", translateConstraint(err))
	}
	return user, nil
}

// Subject operations

func (s *SQLStore) CreateSubject(ctx context.Context, subject *Subject) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subjects (name, qualification, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, subject.Name, subject.Qualification, subject.Description).Scan(&subject.ID)
	if err != nil {
		return fmt.Errorf("create subject: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) ListSubjects(ctx context.Context) ([]*Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, qualification, description
		FROM subjects ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]*Subject, 0)
	for rows.Next() {
		subject := &Subject{}
		if err := rows.Scan(&subject.ID, &subject.Name, &subject.Qualification, &subject.Description); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

func (s *SQLStore) GetSubject(ctx context.Context, id int64) (*Subject, error) {
	subject := &Subject{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, qualification, description
		FROM subjects WHERE id = $1
	`, id).Scan(&subject.ID, &subject.Name, &subject.Qualification, &subject.Description)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", translateConstraint(err))
	}
	return subject, nil
}

func (s *SQLStore) UpdateSubject(ctx context.Context, subject *Subject) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subjects SET name = $1, qualification = $2, description = $3
		WHERE id = $4
	`, subject.Name, subject.Qualification, subject.Description, subject.ID)
	if err != nil {
		return fmt.Errorf("update subject: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "update subject")
}

func (s *SQLStore) DeleteSubject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "delete subject")
}

// Chapter operations

func (s *SQLStore) CreateChapter(ctx context.Context, chapter *Chapter) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO chapters (name, description, subject_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, chapter.Name, chapter.Description, chapter.SubjectID).Scan(&chapter.ID)
	if err != nil {
		return fmt.Errorf("create chapter: %w", translateConstraint(err))
	}
	return nil
}

// ListChapters returns chapters with the owning subject expanded one level,
// the shape the admin listing serializes.
func (s *SQLStore) ListChapters(ctx context.Context) ([]*Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.subject_id,
		       s.id, s.name, s.qualification, s.description
		FROM chapters c
		JOIN subjects s ON c.subject_id = s.id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0)
	for rows.Next() {
		chapter := &Chapter{Subject: &Subject{}}
		if err := rows.Scan(
			&chapter.ID, &chapter.Name, &chapter.Description, &chapter.SubjectID,
			&chapter.Subject.ID, &chapter.Subject.Name, &chapter.Subject.Qualification, &chapter.Subject.Description,
		); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}

func (s *SQLStore) GetChapter(ctx context.Context, id int64) (*Chapter, error) {
	chapter := &Chapter{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, subject_id
		FROM chapters WHERE id = $1
	`, id).Scan(&chapter.ID, &chapter.Name, &chapter.Description, &chapter.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", translateConstraint(err))
	}
	return chapter, nil
}

func (s *SQLStore) UpdateChapter(ctx context.Context, chapter *Chapter) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chapters SET name = $1, description = $2, subject_id = $3
		WHERE id = $4
	`, chapter.Name, chapter.Description, chapter.SubjectID, chapter.ID)
	if err != nil {
		return fmt.Errorf("update chapter: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "update chapter")
}

func (s *SQLStore) DeleteChapter(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "delete chapter")
}

// Quiz operations

func (s *SQLStore) CreateQuiz(ctx context.Context, quiz *Quiz) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO quizzes (chapter_id, date_of_quiz, time_duration_minutes, remarks)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, quiz.ChapterID, quiz.DateOfQuiz, quiz.DurationMinutes, quiz.Remarks).Scan(&quiz.ID)
	if err != nil {
		return fmt.Errorf("create quiz: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]*Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chapter_id, date_of_quiz, time_duration_minutes, remarks
		FROM quizzes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]*Quiz, 0)
	for rows.Next() {
		quiz := &Quiz{}
		if err := rows.Scan(&quiz.ID, &quiz.ChapterID, &quiz.DateOfQuiz, &quiz.DurationMinutes, &quiz.Remarks); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (*Quiz, error) {
	quiz := &Quiz{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, chapter_id, date_of_quiz, time_duration_minutes, remarks
		FROM quizzes WHERE id = $1
	`, id).Scan(&quiz.ID, &quiz.ChapterID, &quiz.DateOfQuiz, &quiz.DurationMinutes, &quiz.Remarks)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", translateConstraint(err))
	}
	return quiz, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, quiz *Quiz) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE quizzes SET chapter_id = $1, date_of_quiz = $2, time_duration_minutes = $3, remarks = $4
		WHERE id = $5
	`, quiz.ChapterID, quiz.DateOfQuiz, quiz.DurationMinutes, quiz.Remarks, quiz.ID)
	if err != nil {
		return fmt.Errorf("update quiz: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "update quiz")
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "delete quiz")
}

// Question operations

func (s *SQLStore) CreateQuestion(ctx context.Context, question *Question) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO questions (quiz_id, question_statement, option1, option2, option3, option4, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, question.QuizID, question.QuestionStatement, question.Option1, question.Option2,
		question.Option3, question.Option4, question.CorrectOption).Scan(&question.ID)
	if err != nil {
		return fmt.Errorf("create question: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) ListQuestions(ctx context.Context) ([]*Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, question_statement, option1, option2, option3, option4, correct_option
		FROM questions ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]*Question, 0)
	for rows.Next() {
		question := &Question{}
		if err := rows.Scan(
			&question.ID, &question.QuizID, &question.QuestionStatement,
			&question.Option1, &question.Option2, &question.Option3, &question.Option4,
			&question.CorrectOption,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	question := &Question{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, quiz_id, question_statement, option1, option2, option3, option4, correct_option
		FROM questions WHERE id = $1
	`, id).Scan(
		&question.ID, &question.QuizID, &question.QuestionStatement,
		&question.Option1, &question.Option2, &question.Option3, &question.Option4,
		&question.CorrectOption,
	)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", translateConstraint(err))
	}
	return question, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, question *Question) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE questions SET quiz_id = $1, question_statement = $2,
			option1 = $3, option2 = $4, option3 = $5, option4 = $6, correct_option = $7
		WHERE id = $8
	`, question.QuizID, question.QuestionStatement, question.Option1, question.Option2,
		question.Option3, question.Option4, question.CorrectOption, question.ID)
	if err != nil {
		return fmt.Errorf("update question: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "update question")
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", translateConstraint(err))
	}
	return requireRowsAffected(res, "delete question")
}

// Score operations

func (s *SQLStore) ListScores(ctx context.Context) ([]*Score, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, quiz_id, total_scored, created_at
		FROM scores ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]*Score, 0)
	for rows.Next() {
		score := &Score{}
		if err := rows.Scan(&score.ID, &score.UserID, &score.QuizID, &score.TotalScored, &score.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// requireRowsAffected converts a no-op write into ErrNotFound
func requireRowsAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
