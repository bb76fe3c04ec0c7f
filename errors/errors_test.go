package errors

import (
	"errors"
	"testing"
)

func TestRelayError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RelayError
		want string
	}{
		{
			name: "basic error without wrapped error",
			err: &RelayError{
				Type:   MethodNotAllowedError,
				Reason: "Method Not Allowed",
			},
			want: "method_not_allowed: Method Not Allowed",
		},
		{
			name: "error with wrapped error",
			err: &RelayError{
				Type:   InvalidRequestError,
				Reason: "Invalid request",
				err:    errors.New("unexpected end of JSON input"),
			},
			want: "invalid_request: Invalid request: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("RelayError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelayError_Is(t *testing.T) {
	err1 := &RelayError{Type: UpstreamError, Reason: "test1"}
	err2 := &RelayError{Type: UpstreamError, Reason: "test2"}
	err3 := &RelayError{Type: InvalidRequestError, Reason: "test3"}

	if !err1.Is(err2) {
		t.Error("Expected err1.Is(err2) to be true for same error type")
	}

	if err1.Is(err3) {
		t.Error("Expected err1.Is(err3) to be false for different error types")
	}
}

func TestRelayError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	err := &RelayError{
		Type:   InvalidRequestError,
		Reason: "outer error",
		err:    innerErr,
	}

	if unwrapped := err.Unwrap(); unwrapped != innerErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, innerErr)
	}
}
