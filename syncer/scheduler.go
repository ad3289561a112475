package syncer

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

type CycleRunner interface {
	SyncCycle(ctx context.Context) Report
}

// Scheduler triggers a sync cycle on a fixed interval. It is an explicitly
// owned value, the caller starts it and stops it during shutdown.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

func NewScheduler(runner CycleRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs one cycle right away and then one per interval until Stop is
// called. An in-flight cycle is left to finish on its own.
func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	s.logger.Info("sync scheduler started", slog.String("interval", s.interval.String()))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runner.SyncCycle(context.Background())
	for {
		select {
		case <-ticker.C:
			s.runner.SyncCycle(context.Background())
		case <-s.done:
			s.logger.Info("sync scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.done)
}
