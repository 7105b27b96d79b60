package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linesWithMarkerAt(markerLine string, markerIndex, total int) string {
	lines := make([]string, total)
	for i := range lines {
		lines[i] = "filler line"
	}
	lines[markerIndex] = markerLine
	return strings.Join(lines, "\n")
}

func TestSplit_NoMarkersReturnsSingleBlock(t *testing.T) {
	s, err := NewService([]string{`^###`}, 5)
	require.NoError(t, err)

	out := s.Split("line one\nline two\nline three")
	require.Len(t, out, 1)
	assert.Equal(t, "line one\nline two\nline three", out[0].Text)
	assert.Equal(t, 0, out[0].StartLine)
	assert.Equal(t, 2, out[0].EndLine)
}

func TestSplit_EmptyBodyReturnsNoBlocks(t *testing.T) {
	s, err := NewService([]string{`^###`}, 5)
	require.NoError(t, err)
	out := s.Split("   \n  \n")
	assert.Empty(t, out)
}

func TestSplit_MarkerAtExactSkipLinesBoundaryRejected(t *testing.T) {
	s, err := NewService([]string{`^###`}, 5)
	require.NoError(t, err)

	total := 20
	body := linesWithMarkerAt("### Job A", 5, total)
	out := s.Split(body)
	// index == skip_lines is NOT a marker (strict inequality), so this
	// collapses to a single whole-body block.
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].StartLine)
	assert.Equal(t, total-1, out[0].EndLine)
}

func TestSplit_MarkerJustInsideBoundaryAccepted(t *testing.T) {
	s, err := NewService([]string{`^###`}, 5)
	require.NoError(t, err)

	total := 20
	body := linesWithMarkerAt("### Job A", 6, total)
	out := s.Split(body)
	require.Len(t, out, 1)
	assert.Equal(t, 6, out[0].StartLine)
	assert.Equal(t, total-1, out[0].EndLine)
}

func TestSplit_MultipleMarkersProduceConsecutiveBlocks(t *testing.T) {
	s, err := NewService([]string{`^### `}, 2)
	require.NoError(t, err)

	body := strings.Join([]string{
		"header 1", "header 2", "header 3",
		"### Job A", "detail a1", "detail a2",
		"### Job B", "detail b1",
		"footer 1", "footer 2",
	}, "\n")

	out := s.Split(body)
	require.Len(t, out, 2)
	assert.Equal(t, "### Job A\ndetail a1\ndetail a2", out[0].Text)
	assert.Equal(t, 3, out[0].StartLine)
	assert.Equal(t, 5, out[0].EndLine)
	assert.Equal(t, "### Job B\ndetail b1\nfooter 1\nfooter 2", out[1].Text)
	assert.Equal(t, 6, out[1].StartLine)
	assert.Equal(t, 9, out[1].EndLine)
}

func TestSplit_DefaultSkipLinesAppliedWhenNonPositive(t *testing.T) {
	s, err := NewService([]string{`^###`}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSkipLines, s.skipLines)
}
