package llm

import (
	"context"
)

// Client generates text completions.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder computes fixed-dimension embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Closer is implemented by clients holding network handles that need an
// explicit shutdown.
type Closer interface {
	Close() error
}

// CloseClients closes every distinct client that exposes a Close method.
func CloseClients(clients ...interface{}) {
	seen := map[interface{}]bool{}
	for _, c := range clients {
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		if closer, ok := c.(Closer); ok {
			_ = closer.Close()
		}
	}
}
