package errors

import (
	"go.uber.org/zap"
)

// LogError logs an error with its context. Upstream details are logged at
// full fidelity here because they originate from the provider, never from
// the relay's own configuration.
func LogError(logger *zap.Logger, err error, requestID string) {
	if relayErr, ok := err.(*RelayError); ok {
		logger.Error("request error",
			zap.String("error_type", string(relayErr.Type)),
			zap.String("reason", relayErr.Reason),
			zap.Int("code", relayErr.Code),
			zap.String("request_id", requestID),
			zap.String("message", relayErr.Message),
			zap.String("details", relayErr.Details),
		)
	} else {
		logger.Error("unexpected error",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}
}
