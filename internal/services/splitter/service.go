// Package splitter partitions a message body into marker-delimited
// SplitBlocks, one per recruitment announcement.
package splitter

import (
	"regexp"
	"strings"

	"github.com/ternarybob/quaero/internal/models"
)

// DefaultSkipLines is the number of lines at each edge of the body that
// can never hold a marker.
const DefaultSkipLines = 5

// Service is the Splitter stage.
type Service struct {
	skipLines int
	markers   []*regexp.Regexp
}

// NewService compiles the marker patterns. skipLines <= 0 falls back to
// DefaultSkipLines.
func NewService(markerPatterns []string, skipLines int) (*Service, error) {
	if skipLines <= 0 {
		skipLines = DefaultSkipLines
	}
	compiled := make([]*regexp.Regexp, 0, len(markerPatterns))
	for _, p := range markerPatterns {
		// Anchored at the start to mirror Python's re.match semantics
		// (prefix match, not unanchored search).
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Service{skipLines: skipLines, markers: compiled}, nil
}

// Split returns the marker-delimited blocks of body. A line at index i is
// a marker iff it matches a marker pattern and skip_lines < i < total -
// skip_lines (strict on both edges). With no markers found, the entire
// trimmed body is returned as a single block, or no block if empty.
func (s *Service) Split(body string) []models.SplitBlock {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	total := len(lines)

	var markerIdx []int
	for i, line := range lines {
		if s.isMarker(line, i, total) {
			markerIdx = append(markerIdx, i)
		}
	}

	if len(markerIdx) == 0 {
		trimmed := strings.TrimSpace(strings.Join(lines, "\n"))
		if trimmed == "" {
			return nil
		}
		return []models.SplitBlock{{Text: trimmed, StartLine: 0, EndLine: total - 1}}
	}

	blocks := make([]models.SplitBlock, 0, len(markerIdx))
	for i, start := range markerIdx {
		end := total
		if i+1 < len(markerIdx) {
			end = markerIdx[i+1]
		}
		text := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if text == "" {
			continue
		}
		blocks = append(blocks, models.SplitBlock{Text: text, StartLine: start, EndLine: end - 1})
	}
	return blocks
}

func (s *Service) isMarker(line string, index, total int) bool {
	if !(s.skipLines < index && index < total-s.skipLines) {
		return false
	}
	for _, re := range s.markers {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
