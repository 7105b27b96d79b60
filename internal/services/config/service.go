package config

import (
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/models"
)

// Service holds an immutable PipelineConfig snapshot behind an atomic
// swap: in-flight pipeline runs keep the snapshot reference they started
// with, and ReloadConfig publishes a new snapshot without blocking them.
type Service struct {
	mu       sync.RWMutex
	snapshot *models.PipelineConfig
	paths    Paths
	logger   arbor.ILogger
}

// NewService loads the initial snapshot from the given file paths.
func NewService(paths Paths, logger arbor.ILogger) (*Service, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	cfg, err := LoadFromFiles(paths)
	if err != nil {
		return nil, err
	}

	return &Service{
		snapshot: cfg,
		paths:    paths,
		logger:   logger,
	}, nil
}

// Snapshot returns the current immutable PipelineConfig. Callers must not
// mutate the returned value; use Clone if a private copy is needed.
func (s *Service) Snapshot() *models.PipelineConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ReloadConfig re-reads every configured JSON file and atomically swaps
// in the new snapshot. In-flight pipeline runs that already captured the
// previous snapshot via Snapshot() are unaffected.
func (s *Service) ReloadConfig() error {
	s.logger.Info().Msg("Reloading pipeline configuration")

	cfg, err := LoadFromFiles(s.paths)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload pipeline configuration")
		return err
	}

	s.mu.Lock()
	s.snapshot = cfg
	s.mu.Unlock()

	s.logger.Info().Strs("steps", cfg.Steps).Msg("Pipeline configuration reloaded")
	return nil
}
