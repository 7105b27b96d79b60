// Package semantic finds the contiguous segment of a message body whose
// sliding-context embedding is closest to a set of job-description
// templates.
package semantic

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/interfaces"
	"github.com/ternarybob/quaero/internal/models"
)

// Service is the Semantic Extractor stage.
type Service struct {
	provider interfaces.EmbeddingProvider
	logger   arbor.ILogger
}

// NewService binds an embedding collaborator. provider may be nil only
// if the caller never invokes Extract/ExtractBatch.
func NewService(provider interfaces.EmbeddingProvider, logger arbor.ILogger) *Service {
	return &Service{provider: provider, logger: logger}
}

type segment struct {
	messageIdx int
	start, end int
	text       string
}

// Extract runs the single-message path: split into non-empty lines,
// build sliding-window segments, embed, and score against the configured
// template sets.
func (s *Service) Extract(ctx context.Context, body string, cfg models.SemanticTemplatesConfig) (*models.SemanticResult, error) {
	results, err := s.ExtractBatch(ctx, []string{body}, cfg)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// ExtractBatch runs the batched path: segments across all bodies are
// coalesced into embedding calls of cfg.BatchSize, and the output
// preserves input order.
func (s *Service) ExtractBatch(ctx context.Context, bodies []string, cfg models.SemanticTemplatesConfig) ([]*models.SemanticResult, error) {
	perMessageLines := make([][]string, len(bodies))
	var segments []segment

	for mi, body := range bodies {
		lines := nonEmptyLines(body)
		perMessageLines[mi] = lines
		if len(lines) == 0 {
			continue
		}
		radius := cfg.ContextRadius
		for i := range lines {
			start := i - radius
			if start < 0 {
				start = 0
			}
			end := i + radius
			if end > len(lines)-1 {
				end = len(lines) - 1
			}
			segments = append(segments, segment{
				messageIdx: mi,
				start:      start,
				end:        end,
				text:       strings.Join(lines[start:end+1], "\n"),
			})
		}
	}

	if len(cfg.Global) == 0 && len(segments) == 0 {
		return buildEmpty(perMessageLines), nil
	}

	templateVecs, err := s.embedTemplates(ctx, cfg)
	if err != nil {
		return nil, err
	}

	segmentTexts := make([]string, len(segments))
	for i, seg := range segments {
		segmentTexts[i] = seg.text
	}

	segmentVecs, err := s.encode(ctx, segmentTexts, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	segmentScores := make([]float64, len(segments))
	for i, vec := range segmentVecs {
		segmentScores[i] = maxSimilarity(vec, templateVecs)
	}

	s.logFieldDiagnostics(ctx, segments, segmentTexts, cfg)

	return assembleResults(bodies, perMessageLines, segments, segmentScores, cfg.GlobalThreshold), nil
}

func (s *Service) embedTemplates(ctx context.Context, cfg models.SemanticTemplatesConfig) ([][]float64, error) {
	if len(cfg.Global) == 0 {
		return nil, nil
	}
	return s.encode(ctx, cfg.Global, cfg.BatchSize)
}

func (s *Service) encode(ctx context.Context, texts []string, batchSize int) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if s.provider == nil {
		return nil, common.NewEmbeddingUnavailable(nil)
	}
	if !s.provider.IsAvailable(ctx) {
		return nil, common.NewEmbeddingUnavailable(nil)
	}
	vecs, err := s.provider.Encode(ctx, texts, batchSize, true)
	if err != nil {
		return nil, common.NewEmbeddingUnavailable(err)
	}
	return vecs, nil
}

func maxSimilarity(vec []float64, templates [][]float64) float64 {
	max := 0.0
	for _, t := range templates {
		if sim := common.CosineSimilarity(vec, t); sim > max {
			max = sim
		}
	}
	return max
}

// logFieldDiagnostics computes, per configured field, the maximum cosine
// across all segments and logs it. Field scores never affect the
// returned result.
func (s *Service) logFieldDiagnostics(ctx context.Context, segments []segment, segmentTexts []string, cfg models.SemanticTemplatesConfig) {
	if s.logger == nil || len(cfg.Fields) == 0 || len(segments) == 0 {
		return
	}

	for field, templates := range cfg.Fields {
		if len(templates) == 0 {
			continue
		}
		fieldVecs, err := s.encode(ctx, templates, cfg.BatchSize)
		if err != nil {
			continue
		}
		max := 0.0
		for _, text := range segmentTexts {
			vecs, err := s.encode(ctx, []string{text}, cfg.BatchSize)
			if err != nil {
				continue
			}
			if sim := maxSimilarity(vecs[0], fieldVecs); sim > max {
				max = sim
			}
		}
		s.logger.Debug().Str("field", field).Float64("max_cosine", max).Msg("semantic: field diagnostic score")
	}
}

func nonEmptyLines(body string) []string {
	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func buildEmpty(perMessageLines [][]string) []*models.SemanticResult {
	out := make([]*models.SemanticResult, len(perMessageLines))
	for i := range out {
		out[i] = nil
	}
	return out
}

func assembleResults(bodies []string, perMessageLines [][]string, segments []segment, scores []float64, threshold float64) []*models.SemanticResult {
	bySegIdx := make(map[int][]int)
	for i, seg := range segments {
		bySegIdx[seg.messageIdx] = append(bySegIdx[seg.messageIdx], i)
	}

	results := make([]*models.SemanticResult, len(bodies))
	for mi := range bodies {
		lines := perMessageLines[mi]
		if len(lines) == 0 {
			results[mi] = nil
			continue
		}

		idxs := bySegIdx[mi]
		lineScores := make([]float64, len(lines))
		for _, si := range idxs {
			seg := segments[si]
			score := scores[si]
			for li := seg.start; li <= seg.end; li++ {
				if score > lineScores[li] {
					lineScores[li] = score
				}
			}
		}

		var matching []int
		for _, si := range idxs {
			if scores[si] >= threshold {
				matching = append(matching, si)
			}
		}

		if len(matching) == 0 {
			results[mi] = &models.SemanticResult{
				Text:       "",
				Score:      0,
				Matched:    false,
				LineScores: lineScores,
			}
			continue
		}

		start := segments[matching[0]].start
		end := segments[matching[0]].end
		sum := 0.0
		for _, si := range matching {
			seg := segments[si]
			if seg.start < start {
				start = seg.start
			}
			if seg.end > end {
				end = seg.end
			}
			sum += scores[si]
		}
		mean := sum / float64(len(matching))

		startCopy, endCopy := start, end
		results[mi] = &models.SemanticResult{
			Text:       strings.Join(lines[start:end+1], "\n"),
			Score:      mean,
			StartLine:  &startCopy,
			EndLine:    &endCopy,
			Matched:    true,
			LineScores: lineScores,
		}
	}
	return results
}
