package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist in the workspace
	ErrNotFound = errors.New("not found")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
