package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProvider_DeterministicForEqualText(t *testing.T) {
	p := NewFakeProvider(8)
	a, err := p.Encode(context.Background(), []string{"hello"}, 0, true)
	require.NoError(t, err)
	b, err := p.Encode(context.Background(), []string{"hello"}, 0, true)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFakeProvider_DifferentTextDifferentVector(t *testing.T) {
	p := NewFakeProvider(8)
	out, err := p.Encode(context.Background(), []string{"alpha", "beta"}, 0, true)
	require.NoError(t, err)
	assert.NotEqual(t, out[0], out[1])
}

func TestFakeProvider_EmptyInput(t *testing.T) {
	p := NewFakeProvider(8)
	out, err := p.Encode(context.Background(), nil, 0, true)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFakeProvider_Unavailable(t *testing.T) {
	p := NewFakeProvider(4).Unavailable(true)
	assert.False(t, p.IsAvailable(context.Background()))
}
