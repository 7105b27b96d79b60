// Package linefilter applies a rule-driven keep/drop decision to each
// line of a cleaned email body.
package linefilter

import (
	"regexp"
	"strings"

	"github.com/ternarybob/quaero/internal/models"
)

var (
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	urlRe        = regexp.MustCompile(`(?i)(https?://|www\.)|\bURL\s*:`)
	phoneRe      = regexp.MustCompile(`\d{2,4}-\d{2,4}-\d{3,4}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Service is a config-driven line filter.
type Service struct {
	enabled             bool
	decorationChars     map[rune]bool
	jobKeywords         []string
	signatureKeywords   []string
	companyPrefixes     []string
	forceDeletePatterns []*regexp.Regexp
	greetingPatterns    []*regexp.Regexp
	closingPatterns     []*regexp.Regexp
	footerPatterns      []*regexp.Regexp
}

// NewService compiles the rule set from a PipelineConfig snapshot. enabled
// mirrors the ENABLE_LINE_FILTER environment switch.
func NewService(cfg models.LineFilterConfig, enabled bool) (*Service, error) {
	s := &Service{
		enabled:           enabled,
		decorationChars:   runeSet(cfg.DecorationChars),
		jobKeywords:       cfg.JobKeywords,
		signatureKeywords: cfg.SignatureKeywords,
		companyPrefixes:   cfg.SignatureCompanyPrefix,
	}

	var err error
	if s.forceDeletePatterns, err = compilePatterns(cfg.ForceDeletePatterns); err != nil {
		return nil, err
	}
	if s.greetingPatterns, err = compilePatterns(cfg.GreetingPatterns); err != nil {
		return nil, err
	}
	if s.closingPatterns, err = compilePatterns(cfg.ClosingPatterns); err != nil {
		return nil, err
	}
	if s.footerPatterns, err = compilePatterns(cfg.FooterPatterns); err != nil {
		return nil, err
	}

	return s, nil
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// FilterLines returns the subset of lines kept in original order.
// Evaluation order per line: force-delete beats job keywords beats
// garbage beats keep.
func (s *Service) FilterLines(lines []string) []string {
	if !s.enabled {
		out := make([]string, len(lines))
		copy(out, lines)
		return out
	}

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if matchesAny(s.forceDeletePatterns, line) {
			continue
		}
		if s.containsJobKeyword(line) {
			kept = append(kept, line)
			continue
		}
		if s.isGarbage(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func (s *Service) containsJobKeyword(line string) bool {
	for _, kw := range s.jobKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

func (s *Service) isGarbage(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if s.isDecorative(trimmed) {
		return true
	}
	if isShortNoise(trimmed) {
		return true
	}
	if matchesAny(s.greetingPatterns, trimmed) {
		return true
	}
	if matchesAny(s.closingPatterns, trimmed) {
		return true
	}
	if s.looksLikeSignature(trimmed) {
		return true
	}
	if matchesAny(s.footerPatterns, trimmed) {
		return true
	}
	return false
}

func (s *Service) isDecorative(line string) bool {
	compact := whitespaceRe.ReplaceAllString(line, "")
	if compact == "" {
		return false
	}

	if len(s.decorationChars) > 0 {
		allDecoration := true
		for _, r := range compact {
			if !s.decorationChars[r] {
				allDecoration = false
				break
			}
		}
		if allDecoration {
			return true
		}
	}

	runes := []rune(compact)
	if len(runes) >= 3 && !isAlnum(runes[0]) {
		first := runes[0]
		allSame := true
		for _, r := range runes {
			if r != first {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}

	return false
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || isWordLetter(r)
}

// isWordLetter reports whether r is a letter - ASCII or CJK - as opposed
// to a digit, underscore, or punctuation/symbol character.
func isWordLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= 0x3040 && r <= 0x30FF) || (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF)
}

// isShortNoise reports a trimmed line of length <= 4 runes consisting
// entirely of digits, punctuation, and/or underscore (no letters, ASCII
// or CJK).
func isShortNoise(line string) bool {
	runes := []rune(line)
	if len(runes) == 0 || len(runes) > 4 {
		return false
	}
	for _, r := range runes {
		if isWordLetter(r) {
			return false
		}
	}
	return true
}

func (s *Service) looksLikeSignature(line string) bool {
	if emailRe.MatchString(line) {
		return true
	}
	if urlRe.MatchString(line) {
		return true
	}
	if phoneRe.MatchString(line) {
		return true
	}
	for _, kw := range s.signatureKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	for _, prefix := range s.companyPrefixes {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
