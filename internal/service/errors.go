package service

import (
	"database/sql"
	"errors"
	"fmt"

	"dms/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrDuplicateIdentity  = errors.New("username or email already taken")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// storeError translates repository errors into the service taxonomy.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repository.ErrMissingReference):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrDuplicateIdentity, err)
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
