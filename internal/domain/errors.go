package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the stores and the HTTP layer. Compare with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrNotAuthenticated   = errors.New("no user logged in")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrVersionConflict    = errors.New("event was modified concurrently")

	// ErrUserNotFound matches ErrNotFound under errors.Is.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrStorageCorrupt marks a persisted value that could not be decoded. Stores
	// recover from it by discarding the entry; it never reaches store callers.
	ErrStorageCorrupt = errors.New("stored value is corrupt")

	// ErrKeyNotFound is returned by KeyValueStore.Get when the key is absent.
	ErrKeyNotFound = errors.New("key not found")
)
