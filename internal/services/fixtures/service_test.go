package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMessages_ReadsTxtFilesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second body"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first body"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644))

	src := NewSource(dir, nil)
	msgs, err := src.FetchMessages(context.Background())
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Subject)
	assert.Equal(t, "first body", msgs[0].Body)
	assert.Equal(t, "b", msgs[1].Subject)
	assert.Equal(t, "second body", msgs[1].Body)
}

func TestFetchMessages_MissingDirReturnsError(t *testing.T) {
	src := NewSource("/nonexistent/path/xyz", nil)
	_, err := src.FetchMessages(context.Background())
	assert.Error(t, err)
}
