package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("account already in use")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrMultipleMatches reports an exact-handle lookup that matched more
	// than one row. The handle column carries no unique constraint;
	// uniqueness is enforced by the pre-check in the service layer.
	ErrMultipleMatches = errors.New("multiple rows match exact lookup")
)
