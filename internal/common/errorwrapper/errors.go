package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotInitialized indicates an operation ran before the browser session was started
	ErrNotInitialized = errors.New("bot not initialized")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...any) error {
	return WrapError(err, fmt.Sprintf(format, args...))
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// BrowserError describes a failed interaction with the controlled page.
type BrowserError struct {
	Action  string
	Target  string
	Wrapped error
}

func (e *BrowserError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("browser %s failed: %v", e.Action, e.Wrapped)
	}
	return fmt.Sprintf("browser %s on '%s' failed: %v", e.Action, e.Target, e.Wrapped)
}

func (e *BrowserError) Unwrap() error {
	return e.Wrapped
}

// NewBrowserError creates a new browser interaction error
func NewBrowserError(action, target string, wrapped error) *BrowserError {
	return &BrowserError{
		Action:  action,
		Target:  target,
		Wrapped: wrapped,
	}
}
