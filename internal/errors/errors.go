package errors

import "net/http"

// APIError is a failure with a fixed status and error code. The error
// handler renders it as problem details.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeDatasetNotFound = "DATASET_NOT_FOUND"
	CodeDataCorrupted   = "DATA_CORRUPTED"
	CodeRateLimit       = "RATE_LIMIT_EXCEEDED"
)

// ErrRateLimitExceeded answers requests rejected by the rate limiter
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimit, "Rate limit exceeded. Please retry shortly")

// NewValidationErrors creates a validation error covering several fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidation, "Request validation failed", errs)
}

// DatasetNotFoundError reports a missing mandatory dataset file
func DatasetNotFoundError(cause error) *APIError {
	return New(http.StatusNotFound, CodeDatasetNotFound, cause.Error())
}
