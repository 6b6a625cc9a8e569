// FilePath: internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
)

// APIError represents a structured error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal error to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewNetworkError creates an error for a failed or timed out fetch
func NewNetworkError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNetwork,
		Message: msg,
		Code:    http.StatusBadGateway,
		err:     err,
	}
}

// NewParseError creates an error for a malformed upstream payload
func NewParseError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeParse,
		Message: msg,
		Code:    http.StatusBadGateway,
		err:     err,
	}
}

// NewStorageError creates a new storage error
func NewStorageError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeStorage,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewUnavailableError creates an error for a dependency that cannot be reached
func NewUnavailableError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeUnavailable,
		Message: msg,
		Code:    http.StatusServiceUnavailable,
		err:     err,
	}
}

func isType(err error, t ErrorType) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}

// IsNetwork checks if an error is a Network error
func IsNetwork(err error) bool { return isType(err, ErrorTypeNetwork) }

// IsParse checks if an error is a Parse error
func IsParse(err error) bool { return isType(err, ErrorTypeParse) }

// IsStorage checks if an error is a Storage error
func IsStorage(err error) bool { return isType(err, ErrorTypeStorage) }

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }
