package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs retention pruning daily at 3 AM.
const DefaultPruneSchedule = "0 3 * * *"

// Scheduler prunes expired ledger records on a cron schedule.
type Scheduler struct {
	store         *Store
	schedule      string
	retentionDays int
	cron          *cron.Cron
	mu            sync.Mutex
	running       bool
	logger        *slog.Logger
}

// NewScheduler creates a retention scheduler. An empty schedule disables it.
func NewScheduler(store *Store, schedule string, retentionDays int) *Scheduler {
	return &Scheduler{
		store:         store,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(),
		logger:        slog.Default().With("component", "audit.scheduler"),
	}
}

// Start begins scheduled pruning. It validates the cron expression and
// stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" || s.retentionDays <= 0 {
		s.logger.Info("retention pruning not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPruning executes one pruning cycle.
func (s *Scheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed",
			"deleted_count", deleted,
			"cutoff", cutoff,
		)
	} else {
		s.logger.Debug("scheduled pruning completed, no records deleted")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
