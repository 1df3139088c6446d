package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different classes of failure in a scrape run
type ErrorType string

const (
	ErrorTypeLoad       ErrorType = "load"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeRedirected ErrorType = "redirected"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeDownload   ErrorType = "download"
	ErrorTypeStore      ErrorType = "store"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a typed error carrying an optional HTTP status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, err error, message string) *Error {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &Error{Type: t, Message: message, Err: err}
}

// HTTPStatus creates an http error for a non-success status code
func HTTPStatus(code int, url string) *Error {
	t := ErrorTypeHTTP
	if code == 429 {
		t = ErrorTypeRateLimit
	}
	return &Error{Type: t, Message: fmt.Sprintf("unexpected status for %s", url), Code: code}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err is a typed error of type t
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
