// Package llm provides the OpenAI-compatible clients behind the SQL
// generator, the embedder, and the narrative summarizer.
package llm

import "context"

// SQLGenerator turns a natural-language question into a candidate SQL
// string. Its output is untrusted and must always pass through the validator
// before anything executes it.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
}

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// Completer is the raw chat-completion capability the generator and
// summarizer are built on.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Ensure Client implements the capability interfaces at compile time.
var (
	_ Completer = (*Client)(nil)
	_ Embedder  = (*Client)(nil)
)
