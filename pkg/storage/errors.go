package storage

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by the store. The database is the authority for
// uniqueness and referential integrity; driver constraint violations are
// translated here so handlers never parse driver error strings.
var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a unique constraint violation
	ErrDuplicate = errors.New("record already exists")
	// ErrForeignKey indicates a foreign key violation: either a referenced
	// parent is missing on write, or children still reference the row on delete
	ErrForeignKey = errors.New("foreign key violation")
	// ErrCheckViolation indicates a CHECK constraint violation
	ErrCheckViolation = errors.New("check constraint violation")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translateConstraint maps driver-specific constraint errors to the
// package sentinels. Unrecognized errors pass through unchanged.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrDuplicate
		case pqForeignKeyViolation:
			return ErrForeignKey
		case pqCheckViolation:
			return ErrCheckViolation
		}
		return err
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKey
		case sqlite3.ErrConstraintCheck:
			return ErrCheckViolation
		}
	}

	return err
}
