package pipeline

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/models"
)

// MessageSource supplies the batch of messages for a scheduled run (an
// IMAP poll, a fixture directory scan, etc).
type MessageSource interface {
	FetchMessages(ctx context.Context) ([]models.EmailMessage, error)
}

// Scheduler runs the pipeline on a cron schedule against a MessageSource.
type Scheduler struct {
	pipeline *Service
	source   MessageSource
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewScheduler binds a pipeline and message source to a cron scheduler.
func NewScheduler(p *Service, source MessageSource, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		pipeline: p,
		source:   source,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start schedules periodic runs. An empty schedule defaults to every 6
// hours.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = "0 0 */6 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runOnce()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Pipeline scheduler started")
	return nil
}

// Stop halts the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Pipeline scheduler stopped")
}

// RunNow triggers an immediate out-of-band run.
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate pipeline run")
	go s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info().Msg("Starting scheduled pipeline run")

	msgs, err := s.source.FetchMessages(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch messages for scheduled run")
		return
	}

	run := s.pipeline.ProcessMessages(ctx, msgs)

	s.logger.Info().
		Int("messages", run.Summary.MessageCount).
		Int("blocks", run.Summary.BlockCount).
		Msg("Scheduled pipeline run completed")
}
