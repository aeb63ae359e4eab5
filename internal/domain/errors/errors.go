package errors

import (
	"net/http"

	"airscout/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Route-check errors
	ErrRouteTooShort = NewBaseError(
		http.StatusBadRequest,
		"ROUTE_TOO_SHORT",
		"Route must have at least 2 coordinate pairs",
		"",
	)

	ErrInvalidCoordinate = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATE",
		"Coordinate out of range",
		"latitude must be in [-90, 90], longitude in [-180, 180]",
	)

	ErrInvalidBuffer = NewBaseError(
		http.StatusBadRequest,
		"INVALID_BUFFER",
		"Buffer distance must be positive",
		"",
	)

	ErrInvalidSeverity = NewBaseError(
		http.StatusBadRequest,
		"INVALID_SEVERITY",
		"Severity must be between 1 and 5",
		"",
	)

	// Subscription errors
	ErrSubscriptionNotFound = NewBaseError(
		http.StatusNotFound,
		"SUBSCRIPTION_NOT_FOUND",
		"Subscription not found",
		"",
	)

	ErrDuplicateSubscription = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_SUBSCRIPTION",
		"A subscription with this route name already exists for this user",
		"",
	)

	ErrSubscriptionCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"SUBSCRIPTION_CREATION_FAILED",
		"Failed to create subscription",
		"",
	)

	// Hazard errors
	ErrHazardNotFound = NewBaseError(
		http.StatusNotFound,
		"HAZARD_NOT_FOUND",
		"Hazard not found",
		"",
	)
)

// NewDatabaseExecuteError wraps an unexpected database error with a
// generic external message while preserving the cause in details.
func NewDatabaseExecuteError(cause error, message string) *BaseError {
	return NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_ERROR",
		message,
		cause.Error(),
	)
}
