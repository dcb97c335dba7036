package storage

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. Uniqueness and
// referential integrity live here, not in handler pre-checks: unique
// indexes back the duplicate checks, RESTRICT foreign keys block deletes
// of parents with children, and CHECK constraints bound qualification and
// correct_option.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s.dialect == DialectSQLite {
		if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	idCol := "BIGSERIAL PRIMARY KEY"
	if s.dialect == DialectSQLite {
		idCol = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			qualification INTEGER NOT NULL CHECK (qualification BETWEEN 5 AND 12),
			dob DATE NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`, idCol),
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS subjects (
			id %s,
			name TEXT NOT NULL,
			qualification INTEGER NOT NULL CHECK (qualification BETWEEN 5 AND 12),
			description TEXT NOT NULL DEFAULT ''
		)`, idCol),
		`CREATE UNIQUE INDEX IF NOT EXISTS subjects_name_qualification_key ON subjects (name, qualification)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chapters (
			id %s,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			subject_id BIGINT NOT NULL REFERENCES subjects (id) ON DELETE RESTRICT
		)`, idCol),
		`CREATE UNIQUE INDEX IF NOT EXISTS chapters_name_subject_key ON chapters (name, subject_id)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS quizzes (
			id %s,
			chapter_id BIGINT NOT NULL REFERENCES chapters (id) ON DELETE RESTRICT,
			date_of_quiz DATE NOT NULL,
			time_duration_minutes INTEGER NOT NULL,
			remarks TEXT NOT NULL DEFAULT ''
		)`, idCol),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS questions (
			id %s,
			quiz_id BIGINT NOT NULL REFERENCES quizzes (id) ON DELETE RESTRICT,
			question_statement TEXT NOT NULL,
			option1 TEXT NOT NULL,
			option2 TEXT NOT NULL,
			option3 TEXT NOT NULL,
			option4 TEXT NOT NULL,
			correct_option INTEGER NOT NULL CHECK (correct_option BETWEEN 1 AND 4)
		)`, idCol),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scores (
			id %s,
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
			quiz_id BIGINT NOT NULL REFERENCES quizzes (id) ON DELETE RESTRICT,
			total_scored INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, idCol),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}
