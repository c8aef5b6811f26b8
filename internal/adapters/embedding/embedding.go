// Package embedding provides text embedding providers for course search.
package embedding

import (
	"context"
)

// Provider turns a piece of text into a dense vector.
//
// Implementations must be safe for concurrent use. Errors returned from
// Embed are transport or provider errors and are candidates for retry by
// the caller; Provider implementations do not retry internally.
type Provider interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model reports the model name used for embedding.
	Model() string

	// Dimension reports the expected vector width.
	Dimension() int
}
