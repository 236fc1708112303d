package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrUnauthorized indicates a missing or invalid identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates that the user is not allowed to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrInvalidTransition indicates an item status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict indicates a uniqueness violation or a concurrent modification.
	ErrConflict = errors.New("conflict")
	// ErrStorage indicates a failure of the remote object store.
	ErrStorage = errors.New("object storage failure")
	// ErrCacheMiss is returned by caches when the key is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// DeleteBlockedError is returned when a category still has subcategories or items
// and the caller did not ask for a cascading delete.
type DeleteBlockedError struct {
	HasSubcategories   bool
	HasItems           bool
	SubcategoriesCount int64
	ItemsCount         int64
}

func (e *DeleteBlockedError) Error() string {
	return fmt.Sprintf("category has %d subcategories and %d items; use forceDelete to remove them",
		e.SubcategoriesCount, e.ItemsCount)
}

// Unwrap lets callers treat the error as invalid input.
func (e *DeleteBlockedError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
