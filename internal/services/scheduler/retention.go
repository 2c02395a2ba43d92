package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/interfaces"
)

// lastPurgeKey is the settings key under which the scheduler records the
// completion time of the most recent purge.
const lastPurgeKey = "retention_last_purge"

// RetentionService purges persisted runs older than the configured age on a
// cron schedule. Disabled by default; Start is a no-op when retention is off.
type RetentionService struct {
	config   *common.RetentionConfig
	runs     interfaces.RunStorage
	settings interfaces.KeyValueStorage
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewRetentionService creates the retention scheduler. settings may be nil;
// the last-purge timestamp is then not recorded.
func NewRetentionService(config *common.RetentionConfig, runs interfaces.RunStorage, settings interfaces.KeyValueStorage, logger arbor.ILogger) *RetentionService {
	return &RetentionService{
		config:   config,
		runs:     runs,
		settings: settings,
		logger:   logger,
	}
}

// Start registers the cleanup job and starts the cron scheduler.
func (s *RetentionService) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Run retention disabled")
		return nil
	}

	maxAge, err := time.ParseDuration(s.config.MaxAge)
	if err != nil {
		return fmt.Errorf("invalid retention max_age %q: %w", s.config.MaxAge, err)
	}

	s.cron = cron.New()
	_, err = s.cron.AddFunc(s.config.Schedule, func() {
		s.purge(maxAge)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Str("max_age", s.config.MaxAge).
		Msg("Run retention scheduler started")

	return nil
}

// Stop halts the scheduler, waiting for a running purge to finish.
func (s *RetentionService) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.logger.Info().Msg("Run retention scheduler stopped")
	}
}

func (s *RetentionService) purge(maxAge time.Duration) {
	ctx := context.Background()
	cutoff := time.Now().Add(-maxAge)
	deleted, err := s.runs.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Run retention purge failed")
		return
	}
	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("Purged expired runs")
	}

	if s.settings != nil {
		if err := s.settings.Set(ctx, lastPurgeKey, time.Now().Format(time.RFC3339)); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record last purge time")
		}
	}
}
