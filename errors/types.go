package errors

import (
	"net/http"
)

// Fixed reason strings of the wire contract. Callers match on these
// exact values, so they are constants rather than free-form messages.
const (
	reasonMethodNotAllowed = "Method Not Allowed"
	reasonInvalidRequest   = "Invalid request"
	reasonUpstream         = "OpenAI API error"
)

// NewError creates a new RelayError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
func NewError(errType ErrorType, reason string, code int, requestID string, err error) *RelayError {
	return &RelayError{
		Type:      errType,
		Reason:    reason,
		Code:      code,
		RequestID: requestID,
		err:       err,
	}
}

// NewMethodNotAllowedError creates the 405 response for any request whose
// method is not POST. The body carries no details: the request is rejected
// before any parsing happens.
//
// Example:
//
//	err := NewMethodNotAllowedError("req_123")
func NewMethodNotAllowedError(requestID string) *RelayError {
	return &RelayError{
		Type:      MethodNotAllowedError,
		Reason:    reasonMethodNotAllowed,
		Code:      http.StatusMethodNotAllowed,
		RequestID: requestID,
	}
}

// NewInvalidRequestError creates the 400 response for local faults:
//   - Malformed JSON bodies
//   - Panics during prompt construction
//   - Transport failures reaching the upstream
//
// The underlying error's text is surfaced in the message field.
//
// Example:
//
//	err := NewInvalidRequestError("req_123", decodeErr)
func NewInvalidRequestError(requestID string, err error) *RelayError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &RelayError{
		Type:      InvalidRequestError,
		Reason:    reasonInvalidRequest,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Message:   message,
		err:       err,
	}
}

// NewUpstreamError creates the 500 response for a non-success status from
// the model provider. The details field carries the upstream's own response
// body verbatim; the relay does not inspect or rewrite it.
//
// Example:
//
//	err := NewUpstreamError("req_123", "rate limited", statusErr)
func NewUpstreamError(requestID string, details string, err error) *RelayError {
	return &RelayError{
		Type:      UpstreamError,
		Reason:    reasonUpstream,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}
