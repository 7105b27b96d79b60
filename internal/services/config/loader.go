package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ternarybob/quaero/internal/models"
)

// Paths names the JSON files backing a PipelineConfig, one per section.
type Paths struct {
	LineFilter          string
	SemanticTemplates   string
	KeywordsTech        string
	IndexRules          string
	ClassifierForeigner string
}

// LoadFromFiles builds a PipelineConfig from independently-maintained
// JSON files, falling back to an empty section when a path is empty or
// the file doesn't exist yet. Steps default to the full seven-stage list
// unless PIPELINE_STEPS overrides them.
func LoadFromFiles(paths Paths) (*models.PipelineConfig, error) {
	cfg := &models.PipelineConfig{
		Steps: defaultSteps(),
	}

	if err := loadJSONInto(paths.LineFilter, &cfg.LineFilter); err != nil {
		return nil, fmt.Errorf("config: line_filter: %w", err)
	}
	if err := loadJSONInto(paths.SemanticTemplates, &cfg.SemanticTemplates); err != nil {
		return nil, fmt.Errorf("config: semantic_templates: %w", err)
	}
	if err := loadJSONInto(paths.KeywordsTech, &cfg.KeywordsTech); err != nil {
		return nil, fmt.Errorf("config: keywords_tech: %w", err)
	}
	if err := loadJSONInto(paths.IndexRules, &cfg.IndexRules); err != nil {
		return nil, fmt.Errorf("config: index_rules: %w", err)
	}
	if err := loadJSONInto(paths.ClassifierForeigner, &cfg.ClassifierForeigner); err != nil {
		return nil, fmt.Errorf("config: classifier_foreigner: %w", err)
	}

	ApplyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadJSONInto(path string, dst interface{}) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func defaultSteps() []string {
	return []string{
		models.StepCleaner,
		models.StepLineFilter,
		models.StepSemantic,
		models.StepSplitter,
		models.StepExtractor,
		models.StepClassifier,
		models.StepAggregator,
	}
}

// ApplyEnv overlays the documented environment variables onto an already
// loaded PipelineConfig, highest priority last (mirrors the "defaults ->
// file -> env" layering used elsewhere in this codebase).
func ApplyEnv(cfg *models.PipelineConfig) {
	if v := os.Getenv("PIPELINE_STEPS"); v != "" {
		var steps []string
		for _, s := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				steps = append(steps, trimmed)
			}
		}
		if len(steps) > 0 {
			cfg.Steps = steps
		}
	}

	if v := os.Getenv("ENABLE_LINE_FILTER"); v != "" {
		enabled := strings.EqualFold(v, "true") || v == "1"
		hasStep := cfg.HasStep(models.StepLineFilter)
		if enabled && !hasStep {
			cfg.Steps = append(cfg.Steps, models.StepLineFilter)
		} else if !enabled && hasStep {
			cfg.Steps = removeStep(cfg.Steps, models.StepLineFilter)
		}
	}

	if v := os.Getenv("SEMANTIC_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SemanticTemplates.BatchSize = n
		}
	}
	if v := os.Getenv("SEMANTIC_CONTEXT_RADIUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SemanticTemplates.ContextRadius = n
		}
	}
	if v := os.Getenv("SEMANTIC_JOB_GLOBAL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SemanticTemplates.GlobalThreshold = f
		}
	} else if v := os.Getenv("SEMANTIC_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SemanticTemplates.GlobalThreshold = f
		}
	}
	if v := os.Getenv("SEMANTIC_JOB_FIELD_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SemanticTemplates.FieldThreshold = f
		}
	}
}

func removeStep(steps []string, name string) []string {
	out := steps[:0]
	for _, s := range steps {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
