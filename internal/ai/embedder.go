package ai

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks failures of the embedding service itself, as opposed to bad input.
var ErrBackendUnavailable = errors.New("embedding backend unavailable")

// Embedder converts text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Describer is implemented by embedders that can name their provider and model for logs.
type Describer interface {
	Provider() string
	Model() string
}
