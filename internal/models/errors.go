package models

import "errors"

// Errors shared by the repository, service and handler layers. Lower layers
// wrap them with context using fmt.Errorf("%w: ...").
var (
	// ErrValidation marks malformed input such as an empty required field.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized marks a missing, invalid, expired or revoked token,
	// or a wrong password.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an operation on a task that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound marks a login attempt for an unknown username.
	ErrUserNotFound = errors.New("user not found")
)
