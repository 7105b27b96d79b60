package interfaces

import "context"

// EmbeddingProvider produces fixed-dimension, unit-normalized vectors for
// batches of strings. Implementations may call out to an external model
// server; callers inject a deterministic fake for tests.
type EmbeddingProvider interface {
	// Encode returns one vector per input string, in order. When
	// normalize is true every returned vector has unit L2 norm.
	Encode(ctx context.Context, texts []string, batchSize int, normalize bool) ([][]float64, error)

	// ModelName and Dimension identify the active model, for logging
	// and diagnostics.
	ModelName() string
	Dimension() int

	// IsAvailable reports whether the provider can currently serve
	// requests (used to downgrade to EmbeddingUnavailable).
	IsAvailable(ctx context.Context) bool
}
