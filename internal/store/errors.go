package store

import (
	"errors"
	"fmt"
)

// ErrCodeNotFound identifies lookups of a record id that is not in its table.
const ErrCodeNotFound = "NOT_FOUND"

// NotFoundError is returned by explicit lookups whose id (or table) is absent.
type NotFoundError struct {
	Table string
	ID    string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no record %q in table %q", ErrCodeNotFound, e.ID, e.Table)
}

// Code returns ErrCodeNotFound.
func (e *NotFoundError) Code() string {
	return ErrCodeNotFound
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
