package rbac

import "errors"

var (
	ErrNotFound     = errors.New("rbac: not found")
	ErrConflict     = errors.New("rbac: resource conflict")
	ErrInvalidInput = errors.New("rbac: invalid input")

	// ErrUnauthenticated denies a check invoked without an actor identity.
	// Callers surface it distinctly from ErrForbidden.
	ErrUnauthenticated = errors.New("rbac: unauthenticated")

	// ErrForbidden denies a check for an authenticated actor.
	ErrForbidden = errors.New("rbac: forbidden")
)
