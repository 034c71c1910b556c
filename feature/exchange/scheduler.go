package exchange

import (
	"context"
	"errors"
	"time"

	"ynab-exchange/core/reconcile"

	"go.uber.org/zap"
)

// Scheduler runs a pass over every budget at a fixed interval.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(service *Service, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{service: service, interval: interval, logger: logger}
}

// Start blocks, running a pass immediately and then every interval, until
// ctx is cancelled. A tick that finds a pass still running is skipped.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.service.RunAll(ctx, reconcile.Options{})
	switch {
	case err == nil:
	case errors.Is(err, reconcile.ErrLeaseHeld):
		s.logger.Info("Skipping scheduled pass, a pass is already running")
	case ctx.Err() != nil:
	default:
		s.logger.Warn("Scheduled pass failed", zap.Error(err))
	}
}
