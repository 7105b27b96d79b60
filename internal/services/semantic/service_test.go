package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaero/internal/models"
	"github.com/ternarybob/quaero/internal/services/embeddings"
)

func unit(axis int, dim int) []float64 {
	v := make([]float64, dim)
	v[axis] = 1
	return v
}

func TestExtract_NoMatchingSegmentReturnsUnmatched(t *testing.T) {
	vectors := map[string][]float64{
		"line one": unit(0, 2),
		"line two": unit(1, 2),
		"job template": unit(0, 2),
	}
	// Segments join adjacent lines with radius 0, so segment text == line text.
	provider := embeddings.NewMapProvider(vectors, 2)
	// Line two's segment is orthogonal to the template (score 0) and line
	// one's is parallel (score 1); the unreachable threshold below is what
	// keeps either from matching.
	delete(vectors, "line two")
	vectors["line two"] = []float64{0, 1}

	svc := NewService(provider, nil)
	cfg := models.SemanticTemplatesConfig{
		Global:          []string{"job template"},
		ContextRadius:   0,
		GlobalThreshold: 2, // unreachable threshold forces no match
		BatchSize:       10,
	}

	result, err := svc.Extract(context.Background(), "line one\nline two", cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Matched)
	assert.Equal(t, 0.0, result.Score)
	assert.Nil(t, result.StartLine)
	assert.Len(t, result.LineScores, 2)
}

func TestExtract_MatchingSegmentReturnsSpan(t *testing.T) {
	vectors := map[string][]float64{
		"job template": unit(0, 2),
		"line one":     unit(0, 2),
		"line two":     unit(1, 2),
	}
	provider := embeddings.NewMapProvider(vectors, 2)

	svc := NewService(provider, nil)
	cfg := models.SemanticTemplatesConfig{
		Global:          []string{"job template"},
		ContextRadius:   0,
		GlobalThreshold: 0.5,
		BatchSize:       10,
	}

	result, err := svc.Extract(context.Background(), "line one\nline two", cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Matched)
	assert.Equal(t, "line one", result.Text)
	assert.Equal(t, 0, *result.StartLine)
	assert.Equal(t, 0, *result.EndLine)
}

func TestExtract_EmptyBodyReturnsNilResult(t *testing.T) {
	svc := NewService(embeddings.NewFakeProvider(4), nil)
	cfg := models.SemanticTemplatesConfig{Global: []string{"x"}, GlobalThreshold: 0.5, BatchSize: 4}
	result, err := svc.Extract(context.Background(), "   \n  \n", cfg)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestExtractBatch_PreservesOrder(t *testing.T) {
	vectors := map[string][]float64{
		"job template": unit(0, 2),
		"alpha":        unit(0, 2),
		"beta":         unit(1, 2),
	}
	provider := embeddings.NewMapProvider(vectors, 2)
	svc := NewService(provider, nil)
	cfg := models.SemanticTemplatesConfig{
		Global:          []string{"job template"},
		ContextRadius:   0,
		GlobalThreshold: 0.5,
		BatchSize:       10,
	}

	results, err := svc.ExtractBatch(context.Background(), []string{"beta", "alpha"}, cfg)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Matched)
	assert.True(t, results[1].Matched)
}

func TestExtract_NoGlobalTemplatesAllScoresZero(t *testing.T) {
	svc := NewService(embeddings.NewFakeProvider(4), nil)
	cfg := models.SemanticTemplatesConfig{GlobalThreshold: 0, BatchSize: 4}
	result, err := svc.Extract(context.Background(), "some line", cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Matched)
	assert.Equal(t, 0.0, result.Score)
}
