// Package apperror defines the application error taxonomy and its mapping to
// HTTP status codes, so handlers can translate service failures uniformly.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes application errors.
type ErrorType int

const (
	// InternalError is an unexpected failure; details stay server-side.
	InternalError ErrorType = iota
	// ValidationError is a malformed request body, carrying field-level messages.
	ValidationError
	// AuthenticationError is a missing/invalid credential or token.
	AuthenticationError
	// NotFoundError covers both missing records and ownership mismatches.
	NotFoundError
	// ConflictError is a uniqueness violation, e.g. duplicate registration fields.
	ConflictError
)

// AppError is the error type returned by services. Fields holds the full set
// of field-level violation messages for validation failures.
type AppError struct {
	Type    ErrorType
	Message string
	Fields  []string
	Err     error // underlying error, never sent to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusBadRequest
	case AuthenticationError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ValidationError, Message: message}
}

// NewFieldErrors creates a ValidationError carrying every field violation,
// not just the first, so clients can display all of them at once.
func NewFieldErrors(messages []string) *AppError {
	return &AppError{Type: ValidationError, Message: "Validation Error", Fields: messages}
}

// NewAuthenticationError creates an AuthenticationError. The message stays
// generic and never discloses which credential field failed.
func NewAuthenticationError(message string) *AppError {
	return &AppError{Type: AuthenticationError, Message: message}
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: NotFoundError, Message: message}
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *AppError {
	return &AppError{Type: ConflictError, Message: message}
}

// NewInternalError wraps an unexpected failure behind a generic message.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: InternalError, Message: message, Err: err}
}

// From extracts an *AppError from err, falling back to a generic internal
// error so handlers never leak raw error strings.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Internal server error", err)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}

// IsAuthentication checks if an error is an Authentication error.
func IsAuthentication(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthenticationError
}
