// Package errors provides the error handling system for the brewgen relay.
// It includes structured error types matching the relay's wire contract,
// request ID tracking, and integrated logging with Uber's zap logger.
//
// The relay exposes exactly three error tiers to callers:
//
//   - Method misuse:   405 {"error": "Method Not Allowed"}
//   - Local fault:     400 {"error": "Invalid request", "message": "..."}
//   - Upstream fault:  500 {"error": "OpenAI API error", "details": "..."}
//
// Basic usage:
//
//	errors.WriteError(w, errors.NewInvalidRequestError(requestID, err))
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType represents the categories of errors the relay can produce.
// The set is closed: the wire contract defines no other categories.
type ErrorType string

const (
	// MethodNotAllowedError represents a request with a method other than POST
	MethodNotAllowedError ErrorType = "method_not_allowed"

	// InvalidRequestError represents a malformed body or any other local fault
	InvalidRequestError ErrorType = "invalid_request"

	// UpstreamError represents a non-success status from the model provider
	UpstreamError ErrorType = "upstream_error"
)

// RelayError is our custom error type that implements the error interface
// and serializes to the exact JSON bodies of the relay's wire contract.
// Type, Code and RequestID are kept for logging and tests but are not
// part of the response body; the request ID travels in the X-Request-ID
// header instead.
type RelayError struct {
	// Type categorizes the error internally
	Type ErrorType `json:"-"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request (not exposed in JSON)
	RequestID string `json:"-"`

	// Reason is the fixed error string of the wire contract
	Reason string `json:"error"`

	// Message carries the local fault description for invalid requests
	Message string `json:"message,omitempty"`

	// Details carries the raw upstream body for upstream faults
	Details string `json:"details,omitempty"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, reason, and underlying error (if any).
func (e *RelayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Reason, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *RelayError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *RelayError) Is(target error) bool {
	t, ok := target.(*RelayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes a RelayError to an http.ResponseWriter.
// It sets the appropriate content type and status code, then writes
// the error as a JSON response.
func WriteError(w http.ResponseWriter, err *RelayError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		DefaultLogger.Error("Failed to encode error response",
			zap.Error(encErr),
			zap.String("request_id", err.RequestID),
		)
	}
}
