package config

import (
	"fmt"

	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/models"
)

var knownSteps = map[string]bool{
	models.StepCleaner:    true,
	models.StepLineFilter: true,
	models.StepSemantic:   true,
	models.StepSplitter:   true,
	models.StepExtractor:  true,
	models.StepClassifier: true,
	models.StepAggregator: true,
}

// Validate enforces the pipeline's step grammar: unknown step names are
// rejected, and cleaner/line_filter must precede the stages that consume
// cleaned/filtered text when present.
func Validate(cfg *models.PipelineConfig) error {
	seen := make(map[string]int, len(cfg.Steps))
	for i, step := range cfg.Steps {
		if !knownSteps[step] {
			return common.NewConfigError(fmt.Sprintf("unknown pipeline step %q", step))
		}
		if _, dup := seen[step]; dup {
			return common.NewConfigError(fmt.Sprintf("duplicate pipeline step %q", step))
		}
		seen[step] = i
	}

	if cleanerIdx, ok := seen[models.StepCleaner]; ok {
		for _, consumer := range []string{models.StepLineFilter, models.StepSemantic, models.StepSplitter, models.StepExtractor, models.StepClassifier} {
			if idx, present := seen[consumer]; present && idx < cleanerIdx {
				return common.NewConfigError(fmt.Sprintf("step %q must come after %q", consumer, models.StepCleaner))
			}
		}
	}

	if lineFilterIdx, ok := seen[models.StepLineFilter]; ok {
		for _, consumer := range []string{models.StepSemantic, models.StepSplitter} {
			if idx, present := seen[consumer]; present && idx < lineFilterIdx {
				return common.NewConfigError(fmt.Sprintf("step %q must come after %q", consumer, models.StepLineFilter))
			}
		}
	}

	if aggIdx, ok := seen[models.StepAggregator]; ok {
		for step, idx := range seen {
			if step != models.StepAggregator && idx > aggIdx {
				return common.NewConfigError(fmt.Sprintf("step %q must come before %q", models.StepAggregator, step))
			}
		}
	}

	return nil
}
