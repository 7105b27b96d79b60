// Package pipeline orchestrates the cleaner, line filter, semantic
// extractor, splitter, keyword extractor, classifier, and aggregator
// stages into a single per-message or batched run.
package pipeline

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/interfaces"
	"github.com/ternarybob/quaero/internal/models"
	"github.com/ternarybob/quaero/internal/services/aggregator"
	"github.com/ternarybob/quaero/internal/services/classifier"
	"github.com/ternarybob/quaero/internal/services/cleaner"
	"github.com/ternarybob/quaero/internal/services/keywords"
	"github.com/ternarybob/quaero/internal/services/linefilter"
	"github.com/ternarybob/quaero/internal/services/semantic"
	"github.com/ternarybob/quaero/internal/services/splitter"
	"github.com/ternarybob/quaero/internal/services/workers"
)

// DefaultWorkerCount bounds how many messages are prepared and split
// concurrently in ProcessMessages. The batched Semantic Extractor call
// in between stays a single sequential call regardless of this value.
const DefaultWorkerCount = 8

// Service is the Pipeline Orchestrator. cfg and the stage instances built
// from it are guarded by mu so Reload can install a freshly rebuilt
// snapshot atomically: ProcessMessage/ProcessMessages capture their own
// local copy of every field under one RLock at the start of the call, so
// a run already in flight keeps the stages it started with even if Reload
// swaps in a new cfg mid-run.
type Service struct {
	mu     sync.RWMutex
	cfg    *models.PipelineConfig
	logger arbor.ILogger

	cleaner     *cleaner.Service
	lineFilter  *linefilter.Service
	semantic    *semantic.Service
	splitter    *splitter.Service
	aggregator  *aggregator.Service
	workerCount int

	provider       interfaces.EmbeddingProvider
	markerPatterns []string
	skipLines      int
}

// stageSet holds one rebuild's worth of stage instances.
type stageSet struct {
	cleaner    *cleaner.Service
	lineFilter *linefilter.Service
	semantic   *semantic.Service
	splitter   *splitter.Service
	aggregator *aggregator.Service
}

// New builds an orchestrator with stages instantiated according to
// cfg.Steps. markerPatterns and skipLines configure the splitter (absent
// from PipelineConfig's own shape; supplied by the caller, e.g. from
// index_rules or a fixed default set). skipLines <= 0 uses
// splitter.DefaultSkipLines.
func New(cfg *models.PipelineConfig, provider interfaces.EmbeddingProvider, markerPatterns []string, skipLines int, logger arbor.ILogger) (*Service, error) {
	stages, err := buildStages(cfg, provider, markerPatterns, skipLines, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:            cfg,
		logger:         logger,
		workerCount:    DefaultWorkerCount,
		cleaner:        stages.cleaner,
		lineFilter:     stages.lineFilter,
		semantic:       stages.semantic,
		splitter:       stages.splitter,
		aggregator:     stages.aggregator,
		provider:       provider,
		markerPatterns: markerPatterns,
		skipLines:      skipLines,
	}, nil
}

// Reload rebuilds every stage from cfg and installs them atomically. It is
// the production entrypoint for spec.md §5's hot-reload: a SIGHUP handler
// (see cmd/pipeline/main.go) calls the pipeline config service's
// ReloadConfig followed by Reload with the resulting snapshot. Runs
// already in flight are unaffected; only runs started after Reload
// returns observe the new stage set.
func (s *Service) Reload(cfg *models.PipelineConfig) error {
	stages, err := buildStages(cfg, s.provider, s.markerPatterns, s.skipLines, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.cleaner = stages.cleaner
	s.lineFilter = stages.lineFilter
	s.semantic = stages.semantic
	s.splitter = stages.splitter
	s.aggregator = stages.aggregator
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info().Strs("steps", cfg.Steps).Msg("pipeline: stages reloaded")
	}
	return nil
}

func buildStages(cfg *models.PipelineConfig, provider interfaces.EmbeddingProvider, markerPatterns []string, skipLines int, logger arbor.ILogger) (*stageSet, error) {
	stages := &stageSet{}

	if cfg.HasStep(models.StepCleaner) {
		stages.cleaner = cleaner.NewService(logger)
	}

	if cfg.HasStep(models.StepLineFilter) {
		lf, err := linefilter.NewService(cfg.LineFilter, true)
		if err != nil {
			return nil, common.NewConfigError("line_filter: " + err.Error())
		}
		stages.lineFilter = lf
	}

	if cfg.HasStep(models.StepSemantic) {
		stages.semantic = semantic.NewService(provider, logger)
	}

	if cfg.HasStep(models.StepSplitter) {
		sp, err := splitter.NewService(markerPatterns, skipLines)
		if err != nil {
			return nil, common.NewConfigError("splitter: " + err.Error())
		}
		stages.splitter = sp
	}

	var kwExtractor aggregator.KeywordExtractor
	if cfg.HasStep(models.StepExtractor) {
		kwExtractor = keywords.NewService(cfg.KeywordsTech)
	}

	var cls aggregator.Classifier
	if cfg.HasStep(models.StepClassifier) {
		c, err := classifier.NewService(cfg.ClassifierForeigner)
		if err != nil {
			return nil, common.NewConfigError("classifier: " + err.Error())
		}
		cls = c
	}

	if cfg.HasStep(models.StepAggregator) {
		stages.aggregator = aggregator.NewService(kwExtractor, cls)
	}

	return stages, nil
}

// snapshot captures every stage reference under one read lock so a run
// sees a consistent set even if Reload swaps them mid-run.
func (s *Service) snapshot() (cfg *models.PipelineConfig, cln *cleaner.Service, lf *linefilter.Service, sem *semantic.Service, spl *splitter.Service, agg *aggregator.Service) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.cleaner, s.lineFilter, s.semantic, s.splitter, s.aggregator
}

// ProcessMessage runs the per-message path: clean -> line filter ->
// semantic -> split -> aggregate. Cleaner and line-filter errors abort
// processing and are surfaced as a per-message error; semantic errors
// are logged and downgraded to a null result; splitter/extractor/
// classifier errors abort that message only.
func (s *Service) ProcessMessage(ctx context.Context, msg models.EmailMessage) models.PipelineResult {
	cfg, cln, lf, sem, spl, agg := s.snapshot()
	result := models.PipelineResult{SourcePath: msg.SourcePath, Subject: msg.Subject}

	body, err := prepareBody(cln, lf, msg.Body)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if sem != nil {
		semResult, err := sem.Extract(ctx, body, cfg.SemanticTemplates)
		if err != nil {
			s.logSemanticError(err)
			semResult = nil
		}
		result.Semantic = semResult
	}

	if ctx.Err() != nil {
		result.Error = ctx.Err().Error()
		return result
	}

	blocks, err := splitBody(spl, body)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Blocks = blocks

	if agg != nil {
		result.Aggregation = agg.Aggregate(blocks)
	}

	return result
}

// ProcessMessages runs the batched path: clean and line-filter every
// message first, then invoke the Semantic Extractor's batched variant
// once over every prepared body (preserving order), then split and
// aggregate per message. Non-semantic outputs are equivalent to running
// ProcessMessage once per message.
func (s *Service) ProcessMessages(ctx context.Context, msgs []models.EmailMessage) models.RunResult {
	cfg, cln, lf, sem, spl, agg := s.snapshot()

	results := make([]models.PipelineResult, len(msgs))
	bodies := make([]string, len(msgs))
	failed := make([]bool, len(msgs))

	if len(msgs) > 0 {
		pool := workers.NewPool(s.workerCount, s.logger)
		pool.Start()
		for i, msg := range msgs {
			i, msg := i, msg
			results[i] = models.PipelineResult{SourcePath: msg.SourcePath, Subject: msg.Subject}
			pool.Submit(func(ctx context.Context) error {
				body, err := prepareBody(cln, lf, msg.Body)
				if err != nil {
					results[i].Error = err.Error()
					failed[i] = true
					return nil
				}
				bodies[i] = body
				return nil
			})
		}
		pool.Wait()
	}

	if sem != nil {
		liveBodies := make([]string, 0, len(bodies))
		liveIdx := make([]int, 0, len(bodies))
		for i, failedMsg := range failed {
			if !failedMsg {
				liveBodies = append(liveBodies, bodies[i])
				liveIdx = append(liveIdx, i)
			}
		}

		sems, err := sem.ExtractBatch(ctx, liveBodies, cfg.SemanticTemplates)
		if err != nil {
			s.logSemanticError(err)
		} else {
			for j, idx := range liveIdx {
				results[idx].Semantic = sems[j]
			}
		}
	}

	var allBlocks []models.SplitBlock
	var blocksMu sync.Mutex
	pool := workers.NewPool(s.workerCount, s.logger)
	pool.Start()
	for i, failedMsg := range failed {
		i := i
		if failedMsg || ctx.Err() != nil {
			if ctx.Err() != nil && !failedMsg {
				results[i].Error = ctx.Err().Error()
			}
			continue
		}

		pool.Submit(func(ctx context.Context) error {
			blocks, err := splitBody(spl, bodies[i])
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Blocks = blocks

			if agg != nil {
				results[i].Aggregation = agg.Aggregate(blocks)
			}

			blocksMu.Lock()
			allBlocks = append(allBlocks, blocks...)
			blocksMu.Unlock()
			return nil
		})
	}
	pool.Wait()

	summary := models.RunSummary{MessageCount: len(msgs), BlockCount: len(allBlocks)}
	if agg != nil {
		overall := agg.Aggregate(allBlocks)
		summary.KeywordSummary = overall.KeywordSummary
		summary.ClassSummary = overall.ClassSummary
	}

	return models.RunResult{Results: results, Summary: summary}
}

func prepareBody(cln *cleaner.Service, lf *linefilter.Service, raw string) (string, error) {
	body := raw
	if cln != nil {
		body = cln.Clean(raw)
	}
	if lf != nil {
		lines := splitLines(body)
		kept := lf.FilterLines(lines)
		body = joinLines(kept)
	}
	return body, nil
}

func splitBody(spl *splitter.Service, body string) ([]models.SplitBlock, error) {
	if spl != nil {
		return spl.Split(body), nil
	}
	trimmed := trim(body)
	if trimmed == "" {
		return nil, nil
	}
	lines := splitLines(body)
	return []models.SplitBlock{{Text: trimmed, StartLine: 0, EndLine: len(lines) - 1}}, nil
}

func (s *Service) logSemanticError(err error) {
	if s.logger != nil {
		s.logger.Warn().Err(err).Msg("pipeline: semantic extraction failed, downgrading to null result")
	}
}
