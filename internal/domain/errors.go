package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrMemberNotFound    = errors.New("workspace member not found")
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// Validation errors
var (
	ErrEmailRequired       = errors.New("email is required")
	ErrWorkspaceIDRequired = errors.New("workspaceId is required")
	ErrRoleRequired        = errors.New("role is required")
	ErrInvalidRole         = errors.New("invalid role")
)

// Authorization errors
var (
	ErrNotWorkspaceAdmin = errors.New("you do not have permission")
)

// IsValidationError reports whether err is caused by invalid caller input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrWorkspaceIDRequired) ||
		errors.Is(err, ErrRoleRequired) ||
		errors.Is(err, ErrInvalidRole)
}
