package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/interfaces"
)

// MapProvider returns a pre-registered vector for each exact text, for
// tests that need to control cosine similarity precisely rather than
// rely on hash-derived pseudo-randomness.
type MapProvider struct {
	vectors   map[string][]float64
	dimension int
}

var _ interfaces.EmbeddingProvider = (*MapProvider)(nil)

// NewMapProvider creates a provider backed by an explicit text->vector
// table.
func NewMapProvider(vectors map[string][]float64, dimension int) *MapProvider {
	return &MapProvider{vectors: vectors, dimension: dimension}
}

// Encode looks up each text; unregistered texts produce an error.
func (p *MapProvider) Encode(_ context.Context, texts []string, _ int, normalize bool) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := p.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector registered for text %q", text)
		}
		if normalize {
			vec = common.Normalize(vec)
		}
		out[i] = vec
	}
	return out, nil
}

// ModelName identifies this test double.
func (p *MapProvider) ModelName() string { return "map-fake-embedding" }

// Dimension returns the configured vector width.
func (p *MapProvider) Dimension() int { return p.dimension }

// IsAvailable always reports true.
func (p *MapProvider) IsAvailable(_ context.Context) bool { return true }
