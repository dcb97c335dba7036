// Package storage provides SQL-backed persistence for users, subjects,
// chapters, quizzes, questions, and scores.
//
// The database enforces uniqueness, referential integrity, and value range
// constraints; SQLStore translates driver constraint errors into the
// package sentinel errors so callers can branch on errors.Is without
// knowing which driver is in use.
package storage
