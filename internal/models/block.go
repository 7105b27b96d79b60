package models

// SplitBlock is one opportunity-announcement region of a message body,
// produced by the Splitter and consumed by every downstream stage.
type SplitBlock struct {
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// AggregatedBlock is a SplitBlock enriched with its keyword matches and
// class labels, produced by the Aggregator.
type AggregatedBlock struct {
	Text      string          `json:"text"`
	StartLine int             `json:"start_line"`
	EndLine   int             `json:"end_line"`
	Keywords  []KeywordMatch  `json:"keywords"`
	Classes   []string        `json:"classes"`
}
