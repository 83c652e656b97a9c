// Package errors provides structured error handling at the flow
// boundaries: store and domain errors are converted here into codes and
// user-visible messages and never propagate raw to the page.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes for the application's failure taxonomy
const (
	// Store failures
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	CodeDuplicateKey     ErrorCode = "DUPLICATE_KEY"

	// Authentication and validation failures
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeWeakPassword       ErrorCode = "WEAK_PASSWORD"
	CodePasswordMismatch   ErrorCode = "PASSWORD_MISMATCH"
	CodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	// External boundary failures
	CodeNetworkError ErrorCode = "NETWORK_ERROR"

	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeWeakPassword, CodePasswordMismatch, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeEmailTaken, CodeDuplicateKey:
		return http.StatusConflict
	case CodeNetworkError:
		return http.StatusBadGateway
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates a new AppError wrapping a cause
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// As extracts an AppError from err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
