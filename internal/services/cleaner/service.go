// Package cleaner strips HTML and normalizes whitespace in a raw email
// body, preserving logical line breaks.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var (
	blockTags       = "p, div, section, article, li, tr, td, th, h1, h2, h3, h4, h5, h6"
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	tagRe           = regexp.MustCompile(`<[^>]*>`)
)

// Service cleans raw (possibly HTML) email bodies into plain text.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new Cleaner service.
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Clean removes script/style spans, turns <br> and block-closing tags
// into newlines, strips remaining tags, decodes entities, then
// normalizes whitespace per line.
func (s *Service) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text, err := s.stripViaDOM(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn().Err(err).Msg("cleaner: DOM parse failed, falling back to regex stripping")
		}
		text = stripViaRegex(raw)
	}

	return normalizeWhitespace(text)
}

// stripViaDOM does the tag-aware part of the algorithm (steps 1-5) using
// goquery: script/style nodes are removed outright, <br> and
// block-closing tags become newline text nodes, and .Text() both strips
// every remaining tag and decodes entities (the underlying HTML
// tokenizer in golang.org/x/net/html already unescapes text nodes).
func (s *Service) stripViaDOM(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()
	doc.Find("br").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithHtml("\n")
	})
	doc.Find(blockTags).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	return doc.Text(), nil
}

// stripViaRegex is the fallback path for inputs goquery's HTML parser
// can't make sense of (e.g. already-plain-text bodies with stray angle
// brackets).
func stripViaRegex(raw string) string {
	withoutTags := tagRe.ReplaceAllString(raw, "")
	return withoutTags
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := horizontalSpace.ReplaceAllString(line, " ")
		trimmed := strings.TrimSpace(collapsed)
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	return strings.Join(kept, "\n")
}
