package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeGameNotActive          = "GAME_NOT_ACTIVE"
	ErrCodeOutOfRange             = "OUT_OF_RANGE"
	ErrCodeAttemptsExhausted      = "ATTEMPTS_EXHAUSTED"
	ErrCodeSessionLimitExceeded   = "CONCURRENT_SESSION_LIMIT_EXCEEDED"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInternal               = "INTERNAL_ERROR"
	ErrCodeBadRequest             = "BAD_REQUEST"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string              // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string              // Human-readable error message
	Status  int                 // HTTP status code
	Details map[string][]string // Per-field messages (validation only)
	Err     error               // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// AsAppError returns err as an AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewForbiddenError creates a new FORBIDDEN error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewGameNotActiveError is returned for operations on a finished game.
func NewGameNotActiveError() *AppError {
	return &AppError{
		Code:    ErrCodeGameNotActive,
		Message: "This game is no longer active",
		Status:  http.StatusConflict,
	}
}

// NewOutOfRangeError reports a guess outside the session bounds.
func NewOutOfRangeError(min, max int) *AppError {
	return &AppError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("Guess must be between %d and %d", min, max),
		Status:  http.StatusBadRequest,
	}
}

// NewAttemptsExhaustedError is returned once the attempt budget is used up.
func NewAttemptsExhaustedError() *AppError {
	return &AppError{
		Code:    ErrCodeAttemptsExhausted,
		Message: "Maximum number of attempts reached",
		Status:  http.StatusConflict,
	}
}

// NewSessionLimitError is returned when a user already has limit active games.
func NewSessionLimitError(limit int) *AppError {
	return &AppError{
		Code:    ErrCodeSessionLimitExceeded,
		Message: fmt.Sprintf("You can have a maximum of %d active games at once.", limit),
		Status:  http.StatusConflict,
	}
}

// NewConflictError creates a new CONFLICT error
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
		Details: map[string][]string{field: {reason}},
	}
}

// NewValidationErrors creates a VALIDATION_ERROR carrying every failed field.
func NewValidationErrors(details map[string][]string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "One or more validation errors occurred",
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}
