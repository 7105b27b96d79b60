// Package classifier applies literal-substring regex patterns per class
// label to block text and summarizes class occurrence across blocks.
package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/quaero/internal/models"
)

// StrategyLineLevelDirectMatch is the only classification strategy
// currently supported.
const StrategyLineLevelDirectMatch = "line-level-direct-match"

type classEntry struct {
	label    string
	patterns []*regexp.Regexp
}

// Service is the Classifier stage.
type Service struct {
	classes  []classEntry
	dedupe   bool
	strategy string
}

// NewService compiles each class's patterns as literal substrings.
// Go's map type carries no iteration order, so classes are evaluated in
// sorted-label order for deterministic, reproducible output.
func NewService(cfg models.ClassifierConfig) (*Service, error) {
	s := &Service{
		dedupe:   cfg.Dedupe,
		strategy: cfg.Strategy,
	}
	if s.strategy == "" {
		s.strategy = StrategyLineLevelDirectMatch
	}

	labels := make([]string, 0, len(cfg.Classes))
	for label := range cfg.Classes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		patterns := cfg.Classes[label]
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(regexp.QuoteMeta(p))
			if err != nil {
				return nil, err
			}
			compiled = append(compiled, re)
		}
		s.classes = append(s.classes, classEntry{label: label, patterns: compiled})
	}

	return s, nil
}

// Classify returns the class labels whose patterns occur in block, in
// sorted-label order (see NewService).
func (s *Service) Classify(block string) []string {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")

	var hits []string
	for _, cls := range s.classes {
		matched := false
		for _, line := range lines {
			for _, re := range cls.patterns {
				if re.MatchString(line) {
					hits = append(hits, cls.label)
					matched = true
					break
				}
			}
			if matched && s.dedupe {
				break
			}
		}
	}
	return hits
}

// Summarize computes, per class, count (blocks in which the class
// appears; 0 or 1 per block when dedupe is true) and ratio = count /
// len(blocks). Returns an empty map when blocks is empty.
func (s *Service) Summarize(blocks []string) models.ClassSummary {
	summary := models.ClassSummary{}
	if len(blocks) == 0 {
		return summary
	}

	counts := make(map[string]int)
	for _, block := range blocks {
		classes := s.Classify(block)
		if s.dedupe {
			seen := make(map[string]bool)
			for _, c := range classes {
				if !seen[c] {
					seen[c] = true
					counts[c]++
				}
			}
			continue
		}
		for _, c := range classes {
			counts[c]++
		}
	}

	for cls, count := range counts {
		summary[cls] = models.ClassStat{
			Count: count,
			Ratio: float64(count) / float64(len(blocks)),
		}
	}
	return summary
}
