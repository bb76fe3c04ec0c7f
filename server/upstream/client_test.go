package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/brewgen/brewgen/config"
	"github.com/brewgen/brewgen/server/prompt"
)

func testUpstreamConfig(endpoint string) config.UpstreamConfig {
	return config.UpstreamConfig{
		Endpoint:    endpoint,
		Model:       "gpt-3.5-turbo",
		APIKey:      "sk-test",
		Temperature: 0.5,
		MaxTokens:   800,
	}
}

func testMessages() []prompt.Message {
	return []prompt.Message{
		{Role: "system", Content: prompt.SystemPrompt},
		{Role: "user", Content: "Name: El Salvador Bourbon"},
	}
}

// TestClientComplete verifies the outbound wire format and response
// extraction against a fake provider.
func TestClientComplete(t *testing.T) {
	logger := zaptest.NewLogger(t)

	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<table></table>"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testUpstreamConfig(srv.URL), config.CircuitBreakerConfig{}, srv.Client(), logger)

	content, err := client.Complete(context.Background(), testMessages())
	require.NoError(t, err)
	assert.Equal(t, "<table></table>", content)

	// Authorization carries the configured bearer credential
	assert.Equal(t, "Bearer sk-test", gotAuth)

	// Fixed payload fields
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	assert.Equal(t, 0.5, gotBody["temperature"])
	assert.Equal(t, float64(800), gotBody["max_tokens"])

	// Two-message array, system then user
	msgs, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]interface{})
	second := msgs[1].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "Name: El Salvador Bourbon", second["content"])
}

// TestClientCompleteUpstreamError verifies that a non-success status becomes
// a StatusError carrying the raw body verbatim.
func TestClientCompleteUpstreamError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "rate limited")
	}))
	defer srv.Close()

	client := NewClient(testUpstreamConfig(srv.URL), config.CircuitBreakerConfig{}, srv.Client(), logger)

	_, err := client.Complete(context.Background(), testMessages())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "rate limited", statusErr.Body)
}

// TestClientCompleteMissingChoices verifies the empty-string fallback when
// the success body has no choices path.
func TestClientCompleteMissingChoices(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "no choices key", body: `{"id": "cmpl-1"}`},
		{name: "empty choices", body: `{"choices": []}`},
		{name: "choice without message", body: `{"choices": [{}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(testUpstreamConfig(srv.URL), config.CircuitBreakerConfig{}, srv.Client(), logger)

			content, err := client.Complete(context.Background(), testMessages())
			require.NoError(t, err)
			assert.Equal(t, "", content)
		})
	}
}

// TestClientCompleteTransportError verifies that transport failures surface
// as plain errors, not StatusErrors.
func TestClientCompleteTransportError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(testUpstreamConfig(srv.URL), config.CircuitBreakerConfig{}, nil, logger)

	_, err := client.Complete(context.Background(), testMessages())
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

// TestClientCompleteInvalidJSON verifies that an unparseable success body is
// an error rather than a silent empty response.
func TestClientCompleteInvalidJSON(t *testing.T) {
	logger := zaptest.NewLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	client := NewClient(testUpstreamConfig(srv.URL), config.CircuitBreakerConfig{}, srv.Client(), logger)

	_, err := client.Complete(context.Background(), testMessages())
	require.Error(t, err)
}

// TestClientBreakerTrips verifies the configurable circuit breaker: after
// the failure threshold, calls fail fast without reaching the upstream.
func TestClientBreakerTrips(t *testing.T) {
	logger := zaptest.NewLogger(t)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer srv.Close()

	breakerCfg := config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
	client := NewClient(testUpstreamConfig(srv.URL), breakerCfg, srv.Client(), logger)

	for i := 0; i < 2; i++ {
		_, err := client.Complete(context.Background(), testMessages())
		require.Error(t, err)
	}
	assert.Equal(t, 2, hits)

	// Breaker is now open: the next call must not reach the upstream.
	_, err := client.Complete(context.Background(), testMessages())
	require.Error(t, err)
	assert.Equal(t, 2, hits)
}
