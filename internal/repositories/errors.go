package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level sentinel for a missing record.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is the not-found sentinel from this
// package or from gorm.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err came from a unique-constraint
// violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
