// Package mocks provides test doubles for the relay's injectable
// dependencies: the upstream completer and the config watcher.
package mocks

import (
	"context"
	"sync/atomic"

	"github.com/brewgen/brewgen/server/prompt"
)

// MockCompleter implements a substitutable upstream for handler tests.
// It records every message pair it receives so tests can assert on the
// outbound prompt and on call counts without network access.
//
// Example usage:
//
//	completer := mocks.NewMockCompleter(func(ctx context.Context, msgs []prompt.Message) (string, error) {
//	    return "<table></table>", nil
//	})
type MockCompleter struct {
	CompleteFunc func(context.Context, []prompt.Message) (string, error)

	calls atomic.Int64
	last  atomic.Value // []prompt.Message
}

// NewMockCompleter creates a new MockCompleter with optional complete function.
// If completeFunc is nil, Complete will return empty string with no error.
func NewMockCompleter(completeFunc func(context.Context, []prompt.Message) (string, error)) *MockCompleter {
	return &MockCompleter{CompleteFunc: completeFunc}
}

// Complete records the call and delegates to CompleteFunc.
func (m *MockCompleter) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	m.calls.Add(1)
	m.last.Store(messages)
	if m.CompleteFunc == nil {
		return "", nil
	}
	return m.CompleteFunc(ctx, messages)
}

// Calls returns how many times Complete was invoked.
func (m *MockCompleter) Calls() int {
	return int(m.calls.Load())
}

// LastMessages returns the message pair of the most recent call, or nil
// if Complete was never invoked.
func (m *MockCompleter) LastMessages() []prompt.Message {
	v := m.last.Load()
	if v == nil {
		return nil
	}
	return v.([]prompt.Message)
}
