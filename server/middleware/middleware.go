package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/brewgen/brewgen/errors"
)

// RequestTimer measures request processing time
func RequestTimer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		w.Header().Set("X-Response-Time", duration.String())
	})
}

// PanicRecovery recovers from panics during request handling. A panic is a
// local fault in the relay's taxonomy, so the response is the 400
// invalid-request body with the panic text as the message.
func PanicRecovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := debug.Stack()
					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.ByteString("stack", stack),
					)

					var requestID string
					if id := r.Context().Value(RequestIDKey); id != nil {
						requestID = id.(string)
					}
					errors.WriteError(w, errors.NewInvalidRequestError(
						requestID,
						fmt.Errorf("%v", rec),
					))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORS attaches Cross-Origin Resource Sharing headers. Preflight requests
// are not short-circuited: the relay's contract answers every non-POST
// method, OPTIONS included, with 405.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		next.ServeHTTP(w, r)
	})
}
