package common

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration for service configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation for mapping document and request validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage for storage/persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeTransport for failures talking to external systems
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeInternal for internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// SyncError represents a structured error with context
type SyncError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *SyncError) WithContext(key string, value interface{}) *SyncError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *SyncError) WithCause(cause error) *SyncError {
	e.Cause = cause
	return e
}

// WithDetails sets the detail text
func (e *SyncError) WithDetails(details string) *SyncError {
	e.Details = details
	return e
}

// NewError creates a new SyncError
func NewError(errorType ErrorType, code, message string) *SyncError {
	return &SyncError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *SyncError {
	return NewError(ErrorTypeConfiguration, code, message)
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *SyncError {
	return NewError(ErrorTypeValidation, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *SyncError {
	return NewError(ErrorTypeStorage, code, message)
}

// NewTransportError creates a transport error
func NewTransportError(code, message string) *SyncError {
	return NewError(ErrorTypeTransport, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *SyncError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with SyncError context
func WrapError(err error, errorType ErrorType, code, message string) *SyncError {
	return NewError(errorType, code, message).WithCause(err)
}

// IsErrorType reports whether err is a SyncError of type t
func IsErrorType(err error, t ErrorType) bool {
	var se *SyncError
	if !errors.As(err, &se) {
		return false
	}
	return se.Type == t
}
