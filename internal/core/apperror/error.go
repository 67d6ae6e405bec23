// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All expected authorization outcomes and admin failures use AppError so the
// HTTP layer can render consistent responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the authorization engine
const (
	// Infrastructure errors (5xx)
	CodeInternal         = "INTERNAL_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Authorization errors (401, 403)
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"

	// OwnershipRequired is an internal signal: the action resolves to an
	// ownership-sensitive level and no entity data was supplied. It must never
	// be surfaced to end users; callers re-check with concrete entity data
	// before mutating state.
	CodeOwnershipRequired = "OWNERSHIP_REQUIRED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the engine.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (denied actions, subject, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthenticated creates an authentication error (401)
func NewUnauthenticated(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewOwnershipRequired creates the internal pending-verification signal.
// Never rendered to end users; see CodeOwnershipRequired.
func NewOwnershipRequired(entityType string) *AppError {
	return &AppError{
		Code:       CodeOwnershipRequired,
		Message:    "entity ownership data required to complete this check",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"entity_type": entityType},
	}
}

// NewStoreUnavailable creates an override-store failure error (503).
// The engine fails closed to static defaults when this occurs during reads;
// admin writes propagate it to the caller.
func NewStoreUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeStoreUnavailable,
		Message:    "authorization override store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsValidation checks if error is CodeValidation
func IsValidation(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeValidation
	}
	return false
}

// IsForbidden checks if error is CodeForbidden
func IsForbidden(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeForbidden
	}
	return false
}
