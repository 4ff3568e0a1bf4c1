package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates insufficient permissions
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Reporting-specific errors

var (
	// ErrFetchFailed indicates the trade store query failed
	ErrFetchFailed = errors.New("trade fetch failed")

	// ErrStaleResult indicates a fetch completed after a newer one superseded it
	ErrStaleResult = errors.New("stale fetch result discarded")

	// ErrExportFailed indicates report serialization failed
	ErrExportFailed = errors.New("report export failed")

	// ErrUnsupportedFormat indicates an unknown export format was requested
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrInvalidPeriod indicates an out-of-range reporting period
	ErrInvalidPeriod = errors.New("invalid reporting period")
)

// Ingestion-specific errors

var (
	// ErrMalformedRecord indicates a trade payload that cannot be ingested
	ErrMalformedRecord = errors.New("malformed trade record")

	// ErrDuplicateRecord indicates a trade that was already ingested
	ErrDuplicateRecord = errors.New("duplicate trade record")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
