package models

// Step names accepted in PipelineConfig.Steps. Ordering constraints are
// enforced by internal/services/config.Validate.
const (
	StepCleaner    = "cleaner"
	StepLineFilter = "line_filter"
	StepSemantic   = "semantic"
	StepSplitter   = "splitter"
	StepExtractor  = "extractor"
	StepClassifier = "classifier"
	StepAggregator = "aggregator"
)

// LineFilterConfig is the rule set consumed by the Line Filter stage.
type LineFilterConfig struct {
	DecorationChars         string   `json:"decoration_chars"`
	GreetingPatterns        []string `json:"greeting_patterns"`
	ClosingPatterns         []string `json:"closing_patterns"`
	SignatureCompanyPrefix  []string `json:"signature_company_prefix"`
	SignatureKeywords       []string `json:"signature_keywords"`
	FooterPatterns          []string `json:"footer_patterns"`
	JobKeywords             []string `json:"job_keywords"`
	ForceDeletePatterns     []string `json:"force_delete_patterns"`
}

// SemanticTemplatesConfig configures the Semantic Extractor.
type SemanticTemplatesConfig struct {
	Global          []string            `json:"global"`
	Fields          map[string][]string `json:"fields"`
	ContextRadius   int                 `json:"context_radius"`
	GlobalThreshold float64             `json:"global_threshold"`
	FieldThreshold  float64             `json:"field_threshold"`
	BatchSize       int                 `json:"batch_size"`
}

// ClassifierConfig configures the Classifier stage. The taxonomy name
// lives outside this struct; a PipelineConfig carries exactly one, under
// the "classifier_foreigner" key.
type ClassifierConfig struct {
	Classes  map[string][]string `json:"classes"`
	Dedupe   bool                `json:"dedupe"`
	Strategy string              `json:"strategy"`
}

// PipelineConfig is the JSON-equivalent configuration document consumed
// by the pipeline orchestrator and its stages.
type PipelineConfig struct {
	Steps               []string                `json:"steps"`
	LineFilter          LineFilterConfig        `json:"line_filter"`
	SemanticTemplates   SemanticTemplatesConfig  `json:"semantic_templates"`
	KeywordsTech        map[string][]string      `json:"keywords_tech"`
	IndexRules          map[string]interface{}   `json:"index_rules"`
	ClassifierForeigner ClassifierConfig         `json:"classifier_foreigner"`
}

// Clone returns a deep copy so callers can safely mutate it without
// affecting a shared snapshot (see internal/services/config). IndexRules
// is copied one level deep: its values are shared with the original.
func (c *PipelineConfig) Clone() *PipelineConfig {
	if c == nil {
		return nil
	}
	clone := *c

	clone.Steps = append([]string(nil), c.Steps...)

	clone.LineFilter = c.LineFilter
	clone.LineFilter.GreetingPatterns = append([]string(nil), c.LineFilter.GreetingPatterns...)
	clone.LineFilter.ClosingPatterns = append([]string(nil), c.LineFilter.ClosingPatterns...)
	clone.LineFilter.SignatureCompanyPrefix = append([]string(nil), c.LineFilter.SignatureCompanyPrefix...)
	clone.LineFilter.SignatureKeywords = append([]string(nil), c.LineFilter.SignatureKeywords...)
	clone.LineFilter.FooterPatterns = append([]string(nil), c.LineFilter.FooterPatterns...)
	clone.LineFilter.JobKeywords = append([]string(nil), c.LineFilter.JobKeywords...)
	clone.LineFilter.ForceDeletePatterns = append([]string(nil), c.LineFilter.ForceDeletePatterns...)

	clone.SemanticTemplates = c.SemanticTemplates
	clone.SemanticTemplates.Global = append([]string(nil), c.SemanticTemplates.Global...)
	if c.SemanticTemplates.Fields != nil {
		clone.SemanticTemplates.Fields = make(map[string][]string, len(c.SemanticTemplates.Fields))
		for k, v := range c.SemanticTemplates.Fields {
			clone.SemanticTemplates.Fields[k] = append([]string(nil), v...)
		}
	}

	if c.KeywordsTech != nil {
		clone.KeywordsTech = make(map[string][]string, len(c.KeywordsTech))
		for k, v := range c.KeywordsTech {
			clone.KeywordsTech[k] = append([]string(nil), v...)
		}
	}

	if c.IndexRules != nil {
		clone.IndexRules = make(map[string]interface{}, len(c.IndexRules))
		for k, v := range c.IndexRules {
			clone.IndexRules[k] = v
		}
	}

	clone.ClassifierForeigner = c.ClassifierForeigner
	if c.ClassifierForeigner.Classes != nil {
		clone.ClassifierForeigner.Classes = make(map[string][]string, len(c.ClassifierForeigner.Classes))
		for k, v := range c.ClassifierForeigner.Classes {
			clone.ClassifierForeigner.Classes[k] = append([]string(nil), v...)
		}
	}

	return &clone
}

// HasStep reports whether the named step is enabled in this config.
func (c *PipelineConfig) HasStep(name string) bool {
	for _, s := range c.Steps {
		if s == name {
			return true
		}
	}
	return false
}
