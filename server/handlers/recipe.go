// Package handlers provides the HTTP handlers for the brewgen relay.
// The relay logic lives in one reusable handler; whatever routes the server
// mounts all dispatch here, so prompt construction and the upstream call are
// never duplicated.
//
// The package follows these design principles:
// 1. Consistent error handling using the errors package
// 2. Structured logging with request IDs
// 3. A substitutable upstream client injected at construction time
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/brewgen/brewgen/errors"
	"github.com/brewgen/brewgen/server/middleware"
	"github.com/brewgen/brewgen/server/prompt"
	"github.com/brewgen/brewgen/server/upstream"
)

// Completer is the capability the handler needs from the upstream:
// send a message pair, get back text. Tests substitute a mock; production
// wires *upstream.Client.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// RecipeResponse is the success body: the model's raw output, expected to
// contain HTML table markup, returned verbatim with no sanitization.
type RecipeResponse struct {
	HTML string `json:"html"`
}

// RecipeHandler accepts a coffee sample description, relays the derived
// prompt to the model provider, and returns the provider's text output.
//
// The completer is swappable at runtime: config reloads install a new
// upstream client without interrupting in-flight requests.
type RecipeHandler struct {
	mu        sync.RWMutex
	completer Completer
	logger    *zap.Logger
}

// NewRecipeHandler creates a new relay handler with the given upstream
// completer and logger. It requires both parameters to be non-nil.
func NewRecipeHandler(completer Completer, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		completer: completer,
		logger:    logger,
	}
}

// SetCompleter swaps the upstream completer. Requests already past the
// swap point finish against the old one.
func (h *RecipeHandler) SetCompleter(completer Completer) {
	h.mu.Lock()
	h.completer = completer
	h.mu.Unlock()
}

func (h *RecipeHandler) currentCompleter() Completer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.completer
}

// ServeHTTP implements http.Handler.
// It handles a relay request by:
// 1. Rejecting any method other than POST before parsing anything
// 2. Decoding the JSON body
// 3. Building the system/user prompt from the recognized fields
// 4. Forwarding the prompt upstream and translating the result
//
// Error mapping follows the three-tier taxonomy:
//   - 405 for method misuse, with no upstream call
//   - 400 for malformed bodies and any local fault, including transport
//     failures reaching the provider
//   - 500 for a non-success provider status, relaying the provider's own
//     body verbatim in the details field
func (h *RecipeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var requestID string
	if id := r.Context().Value(middleware.RequestIDKey); id != nil {
		requestID = id.(string)
	}

	if r.Method != http.MethodPost {
		errors.WriteError(w, errors.NewMethodNotAllowedError(requestID))
		return
	}

	logger := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	)

	logger.Info("Processing request")

	var req prompt.RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode request body", zap.Error(err))
		errors.WriteError(w, errors.NewInvalidRequestError(requestID, err))
		return
	}

	messages := prompt.Messages(&req)
	logger.Debug("Built prompt",
		zap.Int("user_message_length", len(messages[1].Content)),
	)

	// An empty user message is still relayed: the contract defines no
	// validation error for an all-empty request.
	content, err := h.currentCompleter().Complete(r.Context(), messages)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			logger.Error("Upstream returned error status",
				zap.Int("status", statusErr.StatusCode),
			)
			errors.WriteError(w, errors.NewUpstreamError(requestID, statusErr.Body, err))
			return
		}

		logger.Error("Failed to reach upstream", zap.Error(err))
		errors.WriteError(w, errors.NewInvalidRequestError(requestID, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(RecipeResponse{HTML: content}); err != nil {
		logger.Error("Failed to encode response",
			zap.Error(fmt.Errorf("failed to encode response: %v", err)),
		)
		return
	}

	logger.Debug("Request successful",
		zap.Int("response_length", len(content)),
	)
}
