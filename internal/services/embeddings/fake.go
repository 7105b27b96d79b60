package embeddings

import (
	"context"

	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/interfaces"
)

// FakeProvider is a deterministic, dependency-free EmbeddingProvider for
// tests: it derives a pseudo-random vector from each input string's
// characters so equal strings always embed identically, and never calls out
// to a network.
type FakeProvider struct {
	dimension   int
	modelName   string
	unavailable bool
}

var _ interfaces.EmbeddingProvider = (*FakeProvider)(nil)

// NewFakeProvider creates a fake provider producing vectors of the given
// dimension.
func NewFakeProvider(dimension int) *FakeProvider {
	return &FakeProvider{dimension: dimension, modelName: "fake-hash-embedding"}
}

// Unavailable flips IsAvailable to false, for exercising
// EmbeddingUnavailable downgrade paths.
func (p *FakeProvider) Unavailable(v bool) *FakeProvider {
	p.unavailable = v
	return p
}

// Encode derives one vector per text via a linear-congruential generator
// seeded from the text's runes.
func (p *FakeProvider) Encode(_ context.Context, texts []string, batchSize int, normalize bool) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec := p.hashEmbed(text)
		if normalize {
			vec = common.Normalize(vec)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *FakeProvider) hashEmbed(text string) []float64 {
	vec := make([]float64, p.dimension)
	if text == "" {
		return vec
	}

	var seed int64 = 0
	for _, ch := range text {
		seed = seed*31 + int64(ch)
	}

	for j := 0; j < p.dimension; j++ {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		vec[j] = float64(seed)/float64(0x7fffffff)*2 - 1
	}
	return vec
}

// ModelName returns a fixed identifier for the fake.
func (p *FakeProvider) ModelName() string { return p.modelName }

// Dimension returns the configured vector width.
func (p *FakeProvider) Dimension() int { return p.dimension }

// IsAvailable always reports true unless Unavailable(true) was set.
func (p *FakeProvider) IsAvailable(_ context.Context) bool { return !p.unavailable }
