// Package upstream implements the chat-completion client the relay forwards
// prompts through. The HTTP transport is injectable so tests can substitute
// a fake provider without network access.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/brewgen/brewgen/config"
	"github.com/brewgen/brewgen/server/prompt"
)

// Doer performs a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-success HTTP status from the provider.
// Body carries the provider's response body verbatim; the relay returns it
// to callers untouched and never inspects the status beyond success/failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// chatRequest is the provider's chat-completion request payload.
type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []prompt.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

// chatResponse is the subset of the provider's response the relay consumes.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client issues chat-completion requests with fixed model and sampling
// parameters. One Client is built per configuration generation; config
// reloads swap in a new Client rather than mutating an existing one.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int

	http    Doer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a chat-completion client from cfg. If doer is nil the
// default http.Client is used; the relay sets no timeout of its own, so
// deadline behavior comes from the request context and the transport.
func NewClient(cfg config.UpstreamConfig, breakerCfg config.CircuitBreakerConfig, doer Doer, logger *zap.Logger) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}

	c := &Client{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		http:        doer,
		logger:      logger,
	}

	if breakerCfg.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "upstream",
			MaxRequests: breakerCfg.MaxRequests,
			Interval:    breakerCfg.Interval,
			Timeout:     breakerCfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerCfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state change",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Complete sends the message pair to the provider and returns the first
// choice's message content. A missing choices path yields an empty string,
// not an error. A non-2xx status yields a *StatusError carrying the raw
// response body. Exactly one outbound request is made per call.
func (c *Client) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	if c.breaker == nil {
		return c.complete(ctx, messages)
	}

	content, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, messages)
	})
	if err != nil {
		return "", err
	}
	return content.(string), nil
}

func (c *Client) complete(ctx context.Context, messages []prompt.Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Upstream returned non-success status",
			zap.Int("status", resp.StatusCode),
		)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode upstream response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}
