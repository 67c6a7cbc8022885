// Package repository contains data access abstractions. Implementations live in subpackages
// (postgres, memory) and contain no business logic.
//
// Missing rows are reported as sql.ErrNoRows, unique-key conflicts as ErrDuplicate and
// writes pointing at a missing parent row as ErrMissingReference, regardless of the implementation.
package repository

import "errors"

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrMissingReference is returned when a write references a row that does not exist.
var ErrMissingReference = errors.New("missing referenced row")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
