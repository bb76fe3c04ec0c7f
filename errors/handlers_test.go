package errors

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestLogError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Relay errors log their structured fields
	LogError(logger, NewUpstreamError("req-1", "rate limited", nil), "req-1")

	// Plain errors fall back to the generic path
	LogError(logger, errors.New("plain failure"), "req-2")
}
