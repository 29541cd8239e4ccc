package core

import "errors"

var (
	ErrSquareOutOfRange = errors.New("square out of range")
	ErrInvalidSquare    = errors.New("invalid square")
	ErrInvalidBoard     = errors.New("invalid board")
	ErrNoSession        = errors.New("no active session")
)

// Error codes
const (
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidSquare     = "INVALID_SQUARE"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidBoard      = "INVALID_BOARD"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)
