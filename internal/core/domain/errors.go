package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Every specific error below wraps exactly
// one of them, so callers classify with errors.Is on the kind.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")

	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrUserExists      = fmt.Errorf("%w: a user with this email already exists", ErrConflict)
	ErrRoleNotFound    = fmt.Errorf("%w: role not found", ErrNotFound)
	ErrRoleAssigned    = fmt.Errorf("%w: user already has this role", ErrConflict)
	ErrRoleNotAssigned = fmt.Errorf("%w: user does not have this role", ErrConflict)
	ErrSelfRoleRemoval = fmt.Errorf("%w: you can't remove your own roles", ErrForbidden)

	ErrTokenNotFound   = fmt.Errorf("%w: token not found", ErrNotFound)
	ErrTokenConsumed   = fmt.Errorf("%w: token has already been used", ErrInvalidState)
	ErrTokenCollision  = fmt.Errorf("%w: token already exists", ErrConflict)
	ErrRequestNotFound = fmt.Errorf("%w: visit request not found", ErrNotFound)
	ErrGuestNotFound   = fmt.Errorf("%w: guest not found", ErrNotFound)

	ErrCredentialNotFound = fmt.Errorf("%w: credential not found", ErrNotFound)
)

// Validationf builds an ErrValidation with a caller-facing detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
