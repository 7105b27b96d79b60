// Package aggregator enriches SplitBlocks with keyword matches and class
// labels, and rolls up keyword/class summaries across a set of blocks.
package aggregator

import (
	"github.com/ternarybob/quaero/internal/models"
)

// KeywordExtractor is the narrow capability the Aggregator depends on.
type KeywordExtractor interface {
	Extract(text string) []models.KeywordMatch
	Summarize(blocks []string) models.KeywordSummary
}

// Classifier is the narrow capability the Aggregator depends on.
type Classifier interface {
	Classify(block string) []string
	Summarize(blocks []string) models.ClassSummary
}

// Service is the Aggregator stage. Either collaborator may be nil, in
// which case the corresponding per-block enrichment is left nil and its
// summary is an empty map.
type Service struct {
	keywords KeywordExtractor
	classes  Classifier
}

// NewService binds optional keyword/classifier collaborators.
func NewService(keywords KeywordExtractor, classes Classifier) *Service {
	return &Service{keywords: keywords, classes: classes}
}

// Aggregate enriches blocks and computes summary rollups.
func (s *Service) Aggregate(blocks []models.SplitBlock) models.Aggregation {
	enriched := make([]models.AggregatedBlock, len(blocks))
	texts := make([]string, len(blocks))

	for i, b := range blocks {
		texts[i] = b.Text
		enriched[i] = models.AggregatedBlock{
			Text:      b.Text,
			StartLine: b.StartLine,
			EndLine:   b.EndLine,
		}
		if s.keywords != nil {
			enriched[i].Keywords = s.keywords.Extract(b.Text)
		}
		if s.classes != nil {
			enriched[i].Classes = s.classes.Classify(b.Text)
		}
	}

	agg := models.Aggregation{Blocks: enriched}
	if s.keywords != nil {
		agg.KeywordSummary = s.keywords.Summarize(texts)
	} else {
		agg.KeywordSummary = models.KeywordSummary{}
	}
	if s.classes != nil {
		agg.ClassSummary = s.classes.Summarize(texts)
	} else {
		agg.ClassSummary = models.ClassSummary{}
	}
	return agg
}
