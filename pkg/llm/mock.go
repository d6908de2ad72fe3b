package llm

import (
	"context"
	"sync/atomic"
)

// MockClient is a configurable mock for testing LLM-backed components.
// Set the function fields to control behavior in tests. Call counters are
// atomic because embedding calls can run concurrently.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

	// CreateEmbeddingFunc is called when CreateEmbedding is invoked.
	// If nil, returns nil slice and nil error.
	CreateEmbeddingFunc func(ctx context.Context, input string) ([]float32, error)

	// Call tracking for verification
	CompleteCalls        atomic.Int64
	CreateEmbeddingCalls atomic.Int64
}

var (
	_ Completer = (*MockClient)(nil)
	_ Embedder  = (*MockClient)(nil)
)

// Complete implements Completer.
func (m *MockClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.CompleteCalls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, temperature)
	}
	return "", nil
}

// CreateEmbedding implements Embedder.
func (m *MockClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	m.CreateEmbeddingCalls.Add(1)
	if m.CreateEmbeddingFunc != nil {
		return m.CreateEmbeddingFunc(ctx, input)
	}
	return nil, nil
}
