package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_BasicHTML(t *testing.T) {
	s := NewService(nil)
	out := s.Clean("<html><body><script>alert(1)</script><b>Hello</b> world</body></html>")
	assert.Equal(t, "Hello world", out)
}

func TestClean_PreservesNewlines(t *testing.T) {
	s := NewService(nil)
	out := s.Clean("Hi<br><div>there</div>")
	assert.Equal(t, "Hi\nthere", out)
}

func TestClean_StripsStyleBlocks(t *testing.T) {
	s := NewService(nil)
	out := s.Clean("<style>.x{color:red}</style><p>Body text</p>")
	assert.Equal(t, "Body text", out)
}

func TestClean_CollapsesHorizontalWhitespace(t *testing.T) {
	s := NewService(nil)
	out := s.Clean("<p>too    many     spaces</p>")
	assert.Equal(t, "too many spaces", out)
}

func TestClean_DecodesEntities(t *testing.T) {
	s := NewService(nil)
	out := s.Clean("<p>Tom &amp; Jerry</p>")
	assert.Equal(t, "Tom & Jerry", out)
}

func TestClean_Empty(t *testing.T) {
	s := NewService(nil)
	assert.Equal(t, "", s.Clean(""))
	assert.Equal(t, "", s.Clean("   \n  "))
}

func TestClean_Idempotent(t *testing.T) {
	s := NewService(nil)
	plain := "line one\nline two\nline three"
	once := s.Clean(plain)
	twice := s.Clean(once)
	assert.Equal(t, once, twice)
}
