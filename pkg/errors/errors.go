package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"pdf-viewer/internal/domain"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusBadRequest,
	}
}

// NewOutOfRangeError creates a new bounds error
func NewOutOfRangeError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeOutOfRange,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProcessing,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// FromDomain classifies err into an AppError. Errors that are already
// AppErrors are returned as-is.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var fetchErr *domain.FetchError
	switch {
	case stderrors.Is(err, domain.ErrPageOutOfRange):
		return NewOutOfRangeError(err.Error(), err)
	case stderrors.Is(err, domain.ErrInvalidZoom),
		stderrors.Is(err, domain.ErrInvalidViewport),
		stderrors.Is(err, domain.ErrUnsupportedSource),
		stderrors.Is(err, domain.ErrStorageDisabled):
		e := NewValidationError(err.Error())
		e.Cause = err
		return e
	case stderrors.Is(err, domain.ErrViewerNotFound):
		e := NewNotFoundError(err.Error())
		e.Cause = err
		return e
	case stderrors.Is(err, domain.ErrEmptyDocument),
		stderrors.Is(err, domain.ErrDownloadTooLarge):
		return NewProcessingError(err.Error(), err)
	case stderrors.Is(err, domain.ErrLoadSuperseded),
		stderrors.Is(err, domain.ErrViewerClosed):
		return NewConflictError(err.Error(), err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(err.Error(), err)
	case stderrors.As(err, &fetchErr):
		return NewNetworkError(err.Error(), err)
	default:
		return NewInternalError(err.Error(), err)
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
