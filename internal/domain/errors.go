package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrOperationNotFound = errors.New("operation not found")

	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCategoryType = errors.New("invalid category type")
)

// Validation constants
const (
	MaxNameLength = 255
)
