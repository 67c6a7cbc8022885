package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"dms/internal/repository"
)

// SQLSTATE codes for integrity violations.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapWriteError turns unique-key violations into repository.ErrDuplicate and foreign-key
// violations into repository.ErrMissingReference.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s", repository.ErrMissingReference, pgErr.ConstraintName)
	}
	return err
}
