package linefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaero/internal/models"
)

func baseConfig() models.LineFilterConfig {
	return models.LineFilterConfig{
		DecorationChars:        "=-*",
		GreetingPatterns:       []string{"^お世話になっております"},
		ClosingPatterns:        []string{"^よろしくお願いいたします"},
		SignatureCompanyPrefix: []string{"株式会社"},
		SignatureKeywords:      []string{"TEL:"},
		FooterPatterns:         []string{"^本メールは"},
		JobKeywords:            []string{"案件", "エンジニア"},
		ForceDeletePatterns:    []string{"配信停止"},
	}
}

func TestFilterLines_ForceDeleteBeatsJobKeyword(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)

	out := s.FilterLines([]string{"配信停止のご案内 案件あり"})
	assert.Empty(t, out)
}

func TestFilterLines_JobKeywordKeepsLine(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)

	out := s.FilterLines([]string{"===", "募集中の案件です", "株式会社テスト"})
	assert.Equal(t, []string{"募集中の案件です"}, out)
}

func TestFilterLines_DecorativeLineDropped(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"=-=-=-="})
	assert.Empty(t, out)
}

func TestFilterLines_RepeatedSymbolRun(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"###"})
	assert.Empty(t, out)
}

func TestFilterLines_ShortNoiseDropped(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"12-3"})
	assert.Empty(t, out)
}

func TestFilterLines_SignatureEmailDropped(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"contact me at test@example.com"})
	assert.Empty(t, out)
}

func TestFilterLines_PhoneDropped(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"03-1234-5678"})
	assert.Empty(t, out)
}

func TestFilterLines_DisabledReturnsUnchanged(t *testing.T) {
	s, err := NewService(baseConfig(), false)
	require.NoError(t, err)
	lines := []string{"===", "anything at all"}
	assert.Equal(t, lines, s.FilterLines(lines))
}

func TestFilterLines_Idempotent(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	lines := []string{"募集中の案件です", "=-=-=-=", "contact@example.com"}
	once := s.FilterLines(lines)
	twice := s.FilterLines(once)
	assert.Equal(t, once, twice)
}

func TestFilterLines_KeepsOrdinaryLine(t *testing.T) {
	s, err := NewService(baseConfig(), true)
	require.NoError(t, err)
	out := s.FilterLines([]string{"技術スキルの詳細について記載します"})
	assert.Equal(t, []string{"技術スキルの詳細について記載します"}, out)
}
