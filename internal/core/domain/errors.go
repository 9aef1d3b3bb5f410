package domain

import "errors"

// Not found errors
var (
	ErrModelNotFound = errors.New("model not found")
	ErrAuditNotFound = errors.New("audit not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Validation errors
var (
	ErrInvalidModelName     = errors.New("model name is required")
	ErrInvalidAuditType     = errors.New("invalid audit type")
	ErrUnsupportedFramework = errors.New("unsupported model framework")
	ErrInvalidArtifactType  = errors.New("invalid artifact file type")
	ErrInvalidEmail         = errors.New("valid email is required")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvalidRole          = errors.New("invalid role")
)

// Conflict errors
var (
	ErrEmailTaken = errors.New("email already registered")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Business rule errors
var (
	ErrAuditNotCompleted = errors.New("audit is not completed")
)

// External service errors
var (
	ErrMalformedScorerResponse = errors.New("malformed scorer response")
)
