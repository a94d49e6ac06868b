package embedding

import "context"

// EmbeddingProvider turns text into a fixed-length vector. Every record's
// embedding is computed exactly once, at creation time, with whatever
// provider is configured; mixing providers invalidates the similarity index.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
