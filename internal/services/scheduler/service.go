// Package scheduler runs the periodic refresh sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Service implements the SchedulerService interface. It owns a single cron
// entry that triggers the refresh sweep; the sweep itself never overlaps,
// a tick arriving while the previous sweep still runs is skipped.
type Service struct {
	refresh  interfaces.RefreshService
	cron     *cron.Cron
	logger   arbor.ILogger
	schedule string
	enabled  bool

	mu       sync.Mutex
	running  bool
	sweeping bool
}

// NewService creates a new scheduler service from the refresh configuration.
func NewService(refresh interfaces.RefreshService, config common.RefreshConfig, logger arbor.ILogger) interfaces.SchedulerService {
	schedule := config.Schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	return &Service{
		refresh:  refresh,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
		enabled:  config.Enabled,
	}
}

// Start registers the refresh sweep and starts the cron loop. Starting a
// disabled scheduler is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.enabled {
		s.logger.Info().Msg("Refresh scheduler disabled by configuration")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", s.schedule).Msg("Refresh scheduler started")
	return nil
}

// Stop halts the cron loop and waits for an in-flight sweep to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info().Msg("Refresh scheduler stopped")
	return nil
}

// IsRunning reports whether the cron loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerRefreshNow runs the refresh sweep immediately, outside the
// schedule.
func (s *Service) TriggerRefreshNow() error {
	s.runSweep()
	return nil
}

func (s *Service) runSweep() {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous refresh sweep still running, skipping tick")
		return
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	start := time.Now()
	count, err := s.refresh.RefreshAll(context.Background())
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh sweep failed")
		return
	}

	s.logger.Info().
		Int("refreshed", count).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Refresh sweep completed")
}
