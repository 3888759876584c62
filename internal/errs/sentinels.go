// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing, malformed, mis-signed or expired session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials indicates a login with a credential that does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation indicates a missing or empty required field.
	ErrValidation = errors.New("validation")

	// ErrStore indicates a failure of the underlying persistence layer.
	ErrStore = errors.New("store failure")
)

// ValidationError carries a human-readable message for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with the given message.
func Invalid(msg string) error { return &ValidationError{Message: msg} }
