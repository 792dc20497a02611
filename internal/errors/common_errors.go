package errors

import (
	"fmt"
	"log/slog"
)

// ErrorType classifies failures raised below the HTTP layer
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is a typed error raised by loaders, services and configuration.
// Path names the file involved, when there is one.
type AppError struct {
	Type    ErrorType
	Message string
	Path    string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// InFile records the file the error refers to
func (e *AppError) InFile(path string) *AppError {
	e.Path = path
	return e
}

// LogAttrs returns the structured fields worth logging alongside the error
func (e *AppError) LogAttrs() []any {
	attrs := []any{slog.String("error_type", string(e.Type))}
	if e.Path != "" {
		attrs = append(attrs, slog.String("file", e.Path))
	}
	return attrs
}

func newAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause}
}

// NewParsingError reports a dataset whose content cannot be interpreted
func NewParsingError(message string, cause error) *AppError {
	return newAppError(ErrTypeParsing, message, cause)
}

// NewStorageError reports a dataset file that exists but cannot be read
func NewStorageError(message string, cause error) *AppError {
	return newAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports caller input that fails a rule
func NewAppValidationError(message string) *AppError {
	return newAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string, cause error) *AppError {
	return newAppError(ErrTypeNotFound, resource+" not found", cause)
}

// NewConfigError reports a configuration value that cannot be used
func NewConfigError(message string, cause error) *AppError {
	return newAppError(ErrTypeConfig, message, cause)
}
