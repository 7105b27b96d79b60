package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config is the ambient application configuration: server, logging,
// embedding provider, and scheduling. Domain configuration (line filter
// rules, semantic templates, keyword taxonomy, classifier patterns)
// lives in models.PipelineConfig and is loaded separately by
// internal/services/config, since it changes on a different cadence and
// is JSON, not TOML.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Embeddings  EmbeddingConfig `toml:"embeddings"`
	Semantic    SemanticConfig  `toml:"semantic"`
	Splitter    SplitterConfig  `toml:"splitter"`
	Pipeline    PipelinePaths   `toml:"pipeline"`
	IMAP        IMAPConfig      `toml:"imap"`
	Processing  ProcessingConfig `toml:"processing"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// EmbeddingConfig configures the Ollama-backed embedding provider.
type EmbeddingConfig struct {
	OllamaURL string `toml:"ollama_url"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension"`
	Device    string `toml:"device"`
}

// SemanticConfig holds semantic tunables read from the [semantic] TOML
// section and overridden by the SEMANTIC_* environment variables at
// startup. These values are not passed to the Semantic Extractor, which
// reads its tunables from models.PipelineConfig.SemanticTemplates.
type SemanticConfig struct {
	BatchSize       int     `toml:"batch_size"`
	ContextRadius   int     `toml:"context_radius"`
	GlobalThreshold float64 `toml:"global_threshold"`
	FieldThreshold  float64 `toml:"field_threshold"`
}

// SplitterConfig configures marker-based block splitting; these are
// ambient (process-level) settings, not part of the JSON domain config.
type SplitterConfig struct {
	MarkerPatterns []string `toml:"marker_patterns"`
	SkipLines      int      `toml:"skip_lines"`
}

// PipelinePaths names the JSON files backing models.PipelineConfig.
type PipelinePaths struct {
	LineFilter          string `toml:"line_filter"`
	SemanticTemplates   string `toml:"semantic_templates"`
	KeywordsTech        string `toml:"keywords_tech"`
	IndexRules          string `toml:"index_rules"`
	ClassifierForeigner string `toml:"classifier_foreigner"`
	EnableLineFilter    bool   `toml:"enable_line_filter"`
}

// IMAPConfig configures the live-inbox message source.
type IMAPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Mailbox  string `toml:"mailbox"`
	UseTLS   bool   `toml:"use_tls"`
}

// ProcessingConfig configures the scheduled pipeline run.
type ProcessingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

// NewDefaultConfig returns a Config with production-safe defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Embeddings: EmbeddingConfig{
			OllamaURL: "http://localhost:11434",
			Model:     "nomic-embed-text",
			Dimension: 768,
			Device:    "cpu",
		},
		Semantic: SemanticConfig{
			BatchSize:       16,
			ContextRadius:   1,
			GlobalThreshold: 0.55,
			FieldThreshold:  0.4,
		},
		Splitter: SplitterConfig{
			SkipLines: 5,
		},
		Pipeline: PipelinePaths{
			EnableLineFilter: true,
		},
		IMAP: IMAPConfig{
			Port:   993,
			UseTLS: true,
		},
		Processing: ProcessingConfig{
			Enabled:  false,
			Schedule: "0 0 */6 * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file ->
// environment.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("QUAERO_ENV"); env != "" {
		config.Environment = env
	}

	if v := os.Getenv("SEMANTIC_MODEL"); v != "" {
		config.Embeddings.Model = v
	}
	if v := os.Getenv("SEMANTIC_DEVICE"); v != "" {
		config.Embeddings.Device = v
	}
	if v := os.Getenv("SEMANTIC_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Semantic.GlobalThreshold = f
		}
	}
	if v := os.Getenv("SEMANTIC_JOB_GLOBAL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Semantic.GlobalThreshold = f
		}
	}
	if v := os.Getenv("SEMANTIC_JOB_FIELD_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Semantic.FieldThreshold = f
		}
	}
	if v := os.Getenv("SEMANTIC_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Semantic.BatchSize = n
		}
	}
	if v := os.Getenv("SEMANTIC_CONTEXT_RADIUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Semantic.ContextRadius = n
		}
	}
	if v := os.Getenv("ENABLE_LINE_FILTER"); v != "" {
		config.Pipeline.EnableLineFilter = strings.EqualFold(v, "true") || v == "1"
	}

	if v := os.Getenv("QUAERO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("QUAERO_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if v := os.Getenv("QUAERO_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Server.Port = p
		}
	}
	if v := os.Getenv("QUAERO_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
}

// IsProduction reports whether Environment names a production-like tier.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateSchedule validates a six-field (seconds-first) cron expression,
// the format the pipeline scheduler parses, and rejects sub-5-minute
// intervals, protecting the embedding provider from being hammered by an
// overly aggressive schedule.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 6 {
		return fmt.Errorf("invalid cron format: expected 6 fields")
	}

	minuteField := parts[1]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have a minimum 5-minute interval")
	}
	if strings.HasPrefix(minuteField, "*/") {
		if n, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/")); err == nil && n < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", n)
		}
	}

	return nil
}

// DeepClone returns an independent copy of c.
func DeepClone(c *Config) *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Logging.Output = append([]string(nil), c.Logging.Output...)
	clone.Splitter.MarkerPatterns = append([]string(nil), c.Splitter.MarkerPatterns...)
	return &clone
}

var _ = time.Second // keep time import if TOML duration fields are added later
