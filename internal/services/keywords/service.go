// Package keywords extracts technology keyword matches from block text
// against a category->keywords taxonomy, and summarizes matches across a
// set of blocks.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/quaero/internal/models"
)

type compiledKeyword struct {
	keyword  string // original casing
	lower    string
	category string
	re       *regexp.Regexp
}

// Service is the Keyword Extractor stage.
type Service struct {
	ordered []compiledKeyword
	byLower map[string]string
}

// NewService builds a global, length-descending keyword list from a
// category->keywords taxonomy. Categories are visited in sorted order and
// keywords in configured order; the length sort is stable, so keywords of
// equal length keep that visiting order.
func NewService(taxonomy map[string][]string) *Service {
	s := &Service{byLower: make(map[string]string)}

	seen := make(map[string]bool)
	type entry struct {
		keyword  string
		category string
	}
	var entries []entry

	categories := make([]string, 0, len(taxonomy))
	for cat := range taxonomy {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		for _, kw := range taxonomy[cat] {
			if seen[kw] {
				continue
			}
			seen[kw] = true
			entries = append(entries, entry{keyword: kw, category: cat})
			s.byLower[strings.ToLower(kw)] = cat
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len([]rune(entries[i].keyword)) > len([]rune(entries[j].keyword))
	})

	s.ordered = make([]compiledKeyword, 0, len(entries))
	for _, e := range entries {
		s.ordered = append(s.ordered, compiledKeyword{
			keyword:  e.keyword,
			lower:    strings.ToLower(e.keyword),
			category: e.category,
			re:       regexp.MustCompile(`(?i)` + regexp.QuoteMeta(e.keyword)),
		})
	}

	return s
}

// Extract returns the distinct keyword matches found in text, in
// longest-keyword-first scan order, with once-per-block deduplication
// and non-overlapping span acceptance.
func (s *Service) Extract(text string) []models.KeywordMatch {
	var matches []models.KeywordMatch
	var claimed [][2]int

	for _, kw := range s.ordered {
		span := firstWordBoundaryMatch(kw.re, text, claimed)
		if span == nil {
			continue
		}
		claimed = append(claimed, *span)

		category, ok := s.byLower[kw.lower]
		if !ok {
			category = models.UnknownCategory
		}
		matches = append(matches, models.KeywordMatch{
			Keyword:  text[span[0]:span[1]],
			Category: category,
		})
	}

	return matches
}

// firstWordBoundaryMatch returns the first non-overlapping occurrence of
// re in text whose surrounding runes are not word characters (Unicode
// letters, digits, or underscore). RE2 has no lookaround support, so boundaries are
// checked manually around each raw match.
func firstWordBoundaryMatch(re *regexp.Regexp, text string, claimed [][2]int) *[2]int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !isWordBoundary(text, start, end) {
			continue
		}
		if overlapsAny(start, end, claimed) {
			continue
		}
		span := [2]int{start, end}
		return &span
	}
	return nil
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r := lastRuneBefore(text, start)
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r := firstRuneAfter(text, end)
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func lastRuneBefore(text string, idx int) rune {
	r := []rune(text[:idx])
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

func firstRuneAfter(text string, idx int) rune {
	r := []rune(text[idx:])
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func overlapsAny(start, end int, claimed [][2]int) bool {
	for _, c := range claimed {
		if start < c[1] && c[0] < end {
			return true
		}
	}
	return false
}

// CountByKeyword counts, per keyword, how many blocks it appears in (at
// most one increment per block).
func (s *Service) CountByKeyword(blocks []string) map[string]int {
	counts := make(map[string]int)
	for _, block := range blocks {
		for _, m := range dedupeByKeyword(s.Extract(block)) {
			counts[m.Keyword]++
		}
	}
	return counts
}

// CountByCategory counts, per category, how many blocks contributed at
// least one keyword from that category.
func (s *Service) CountByCategory(blocks []string) map[string]int {
	counts := make(map[string]int)
	for _, block := range blocks {
		seen := make(map[string]bool)
		for _, m := range s.Extract(block) {
			seen[m.Category] = true
		}
		for cat := range seen {
			counts[cat]++
		}
	}
	return counts
}

func dedupeByKeyword(matches []models.KeywordMatch) []models.KeywordMatch {
	seen := make(map[string]bool)
	out := make([]models.KeywordMatch, 0, len(matches))
	for _, m := range matches {
		if seen[m.Keyword] {
			continue
		}
		seen[m.Keyword] = true
		out = append(out, m)
	}
	return out
}

// Summarize produces, per category, a ranked {keyword, count, ratio}
// list ordered by count descending. Returns an empty map when blocks is
// empty.
func (s *Service) Summarize(blocks []string) models.KeywordSummary {
	summary := models.KeywordSummary{}
	if len(blocks) == 0 {
		return summary
	}

	type key struct{ category, keyword string }
	counts := make(map[key]int)

	for _, block := range blocks {
		for _, m := range dedupeByKeyword(s.Extract(block)) {
			counts[key{category: m.Category, keyword: m.Keyword}]++
		}
	}

	byCategory := make(map[string][]models.KeywordStat)
	for k, count := range counts {
		byCategory[k.category] = append(byCategory[k.category], models.KeywordStat{
			Keyword: k.keyword,
			Count:   count,
			Ratio:   float64(count) / float64(len(blocks)),
		})
	}

	for cat, stats := range byCategory {
		sort.SliceStable(stats, func(i, j int) bool {
			return stats[i].Count > stats[j].Count
		})
		summary[cat] = stats
	}

	return summary
}
