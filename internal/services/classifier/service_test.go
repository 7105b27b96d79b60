package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaero/internal/models"
)

func foreignerConfig() models.ClassifierConfig {
	return models.ClassifierConfig{
		Classes: map[string][]string{
			"ok": {"国籍不問", "外国人歓迎"},
			"ng": {"日本国籍の方限定", "外国籍不可"},
		},
		Dedupe:   true,
		Strategy: StrategyLineLevelDirectMatch,
	}
}

func TestClassify_MatchesClass(t *testing.T) {
	s, err := NewService(foreignerConfig())
	require.NoError(t, err)

	hits := s.Classify("募集要項\n国籍不問\n勤務地: 東京")
	assert.Contains(t, hits, "ok")
	assert.NotContains(t, hits, "ng")
}

func TestClassify_DedupeStopsAfterFirstHit(t *testing.T) {
	s, err := NewService(foreignerConfig())
	require.NoError(t, err)

	hits := s.Classify("国籍不問\n外国人歓迎")
	count := 0
	for _, h := range hits {
		if h == "ok" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestClassify_NoDedupeCountsEveryLine(t *testing.T) {
	cfg := foreignerConfig()
	cfg.Dedupe = false
	s, err := NewService(cfg)
	require.NoError(t, err)

	hits := s.Classify("国籍不問\n外国人歓迎")
	count := 0
	for _, h := range hits {
		if h == "ok" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestClassify_NoMatchReturnsNoHits(t *testing.T) {
	s, err := NewService(foreignerConfig())
	require.NoError(t, err)
	hits := s.Classify("普通の業務内容です")
	assert.Empty(t, hits)
}

func TestSummarize_EmptyBlocksReturnsEmptyMap(t *testing.T) {
	s, err := NewService(foreignerConfig())
	require.NoError(t, err)
	assert.Empty(t, s.Summarize(nil))
}

func TestSummarize_CountsAndRatio(t *testing.T) {
	s, err := NewService(foreignerConfig())
	require.NoError(t, err)

	summary := s.Summarize([]string{"国籍不問", "日本国籍の方限定", "特になし"})
	assert.Equal(t, 1, summary["ok"].Count)
	assert.Equal(t, 1, summary["ng"].Count)
	assert.InDelta(t, 1.0/3.0, summary["ok"].Ratio, 0.0001)
}

func TestNewService_PatternsAreLiteralNotRegexMetaChars(t *testing.T) {
	cfg := models.ClassifierConfig{
		Classes: map[string][]string{"has_dot": {"a.b"}},
		Dedupe:  true,
	}
	s, err := NewService(cfg)
	require.NoError(t, err)

	assert.Empty(t, s.Classify("aXb")) // "." must not act as regex wildcard
	assert.Contains(t, s.Classify("a.b literally here"), "has_dot")
}
