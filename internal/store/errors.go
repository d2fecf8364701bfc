package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing record and a record owned by
	// another user.
	ErrNotFound = errors.New("record not found")

	ErrDuplicateUsername = errors.New("username already exists")
)

// ValidationError reports rejected input before any row is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
