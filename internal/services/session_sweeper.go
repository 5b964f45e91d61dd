package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionSweeper defines methods for evicting idle sessions
type SessionSweeper interface {
	// Sweep removes sessions idle for longer than idle
	//
	// "idle" is the maximum idle time of a kept session.
	//
	// Returns the number of removed sessions.
	Sweep(idle time.Duration) int
}

// sweepScheduler periodically evicts idle player sessions
type sweepScheduler struct {
	cron    *cron.Cron
	sweeper SessionSweeper
	idleTTL time.Duration
	logger  *zap.Logger
}

// NewSweepScheduler creates a scheduler running sweeper on schedule, a cron spec or descriptor such as "@every 5m"
func NewSweepScheduler(sweeper SessionSweeper, schedule string, idleTTL time.Duration, logger *zap.Logger) (*sweepScheduler, error) {
	if idleTTL <= 0 {
		return nil, fmt.Errorf("session idle TTL must be positive")
	}

	s := &sweepScheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		sweeper: sweeper,
		idleTTL: idleTTL,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *sweepScheduler) Start() {
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("idle_ttl", s.idleTTL))
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *sweepScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("session sweeper stopped")
}

// SweepNow runs one sweep immediately
func (s *sweepScheduler) SweepNow() int {
	return s.sweeper.Sweep(s.idleTTL)
}

func (s *sweepScheduler) run() {
	removed := s.sweeper.Sweep(s.idleTTL)
	s.logger.Debug("session sweep finished", zap.Int("removed", removed))
}
