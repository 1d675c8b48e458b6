package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// Ensure SyncScheduler implements the interface.
var _ driving.Scheduler = (*SyncScheduler)(nil)

// SyncScheduler periodically syncs every configured user.
// Users sync in parallel up to MaxParallel; each user's run is isolated from the others.
type SyncScheduler struct {
	config domain.SchedulerConfig
	syncer driving.SyncService
	users  []string
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewSyncScheduler creates a scheduler with configuration.
func NewSyncScheduler(config domain.SchedulerConfig, syncer driving.SyncService, users []string) *SyncScheduler {
	if config.MaxParallel <= 0 {
		config.MaxParallel = 1
	}
	return &SyncScheduler{
		config: config,
		syncer: syncer,
		users:  append([]string(nil), users...),
		now:    time.Now,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	logger.Info("Scheduler started: %d users every %s", len(s.users), s.config.Interval)
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler, waiting for an in-flight round.
func (s *SyncScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunOnce syncs every configured user once and returns results in user order.
func (s *SyncScheduler) RunOnce(ctx context.Context) []domain.JobResult {
	results := make([]domain.JobResult, len(s.users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxParallel)
	for i, userID := range s.users {
		g.Go(func() error {
			results[i] = s.runJob(gctx, userID)
			return nil
		})
	}
	_ = g.Wait() // jobs report through results

	failed := 0
	for _, r := range results {
		if !r.Success() {
			failed++
		}
	}
	logger.Info("Scheduled round finished: %d users, %d failed", len(results), failed)
	return results
}

func (s *SyncScheduler) runJob(ctx context.Context, userID string) domain.JobResult {
	result := domain.JobResult{UserID: userID, StartedAt: s.now()}

	log, err := s.syncer.Sync(ctx, userID)
	result.EndedAt = s.now()
	result.Log = log
	if err != nil {
		result.Error = err.Error()
		logger.Warn("Scheduled sync for %s failed: %v", userID, err)
	}
	return result
}
