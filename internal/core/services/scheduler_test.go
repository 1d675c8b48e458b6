package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

// mockSyncService implements driving.SyncService for scheduler testing.
type mockSyncService struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (m *mockSyncService) Sync(_ context.Context, userID string) (*domain.SyncLog, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(m.delay)

	m.mu.Lock()
	m.calls = append(m.calls, userID)
	m.mu.Unlock()

	log := domain.NewSyncLog("log-"+userID, userID, domain.SyncIncremental, time.Now())
	err := m.fail[userID]
	log.Finalise(time.Now(), err)
	if err != nil {
		return log, err
	}
	return log, nil
}

func (m *mockSyncService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSyncService) FullSync(ctx context.Context, userID string) (*domain.SyncLog, error) {
	return m.Sync(ctx, userID)
}

func (m *mockSyncService) IncrementalSync(ctx context.Context, userID string, _ time.Time) (*domain.SyncLog, error) {
	return m.Sync(ctx, userID)
}

func (m *mockSyncService) SyncFile(_ context.Context, _, _ string) domain.IndexResult {
	return domain.Succeeded(0)
}

func (m *mockSyncService) HandleFileEvent(_ context.Context, _, _ string, _ domain.FileEvent) domain.IndexResult {
	return domain.Succeeded(0)
}

func (m *mockSyncService) Status(_ context.Context, userID string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{UserID: userID}, nil
}

func (m *mockSyncService) History(_ context.Context, _ string, _ int) ([]domain.SyncLog, error) {
	return nil, nil
}

var _ driving.SyncService = (*mockSyncService)(nil)

func TestSyncScheduler_RunOnce(t *testing.T) {
	syncer := &mockSyncService{fail: map[string]error{"bob": fmt.Errorf("boom: %w", domain.ErrRemoteUnavailable)}}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: true, Interval: time.Hour, MaxParallel: 2}, syncer, []string{"alice", "bob", "carol"})

	results := s.RunOnce(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, "alice", results[0].UserID)
	assert.True(t, results[0].Success())
	assert.Equal(t, "bob", results[1].UserID)
	assert.False(t, results[1].Success())
	assert.Contains(t, results[1].Error, "boom")
	require.NotNil(t, results[1].Log)
	assert.Equal(t, domain.SyncFailed, results[1].Log.Status)
	assert.True(t, results[2].Success())
	assert.False(t, results[2].EndedAt.Before(results[2].StartedAt))
}

func TestSyncScheduler_RunOnce_BoundsParallelism(t *testing.T) {
	syncer := &mockSyncService{delay: 20 * time.Millisecond}
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: true, Interval: time.Hour, MaxParallel: 2}, syncer, users)

	results := s.RunOnce(context.Background())

	assert.Len(t, results, 6)
	assert.LessOrEqual(t, syncer.maxSeen.Load(), int32(2))
	assert.Equal(t, 6, syncer.callCount())
}

func TestSyncScheduler_NonPositiveParallelism(t *testing.T) {
	syncer := &mockSyncService{}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: true, Interval: time.Hour}, syncer, []string{"a", "b"})

	results := s.RunOnce(context.Background())

	assert.Len(t, results, 2)
	assert.Equal(t, int32(1), syncer.maxSeen.Load())
}

func TestSyncScheduler_Disabled(t *testing.T) {
	syncer := &mockSyncService{}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: false, Interval: time.Hour, MaxParallel: 1}, syncer, []string{"alice"})

	require.NoError(t, s.Start(context.Background()))
	assert.Zero(t, syncer.callCount())
}

func TestSyncScheduler_StartStop(t *testing.T) {
	syncer := &mockSyncService{}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: true, Interval: 10 * time.Millisecond, MaxParallel: 1}, syncer, []string{"alice"})

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return syncer.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, time.Second, time.Millisecond)
	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.NoError(t, s.Stop())
}

func TestSyncScheduler_StartCancelled(t *testing.T) {
	syncer := &mockSyncService{}
	s := NewSyncScheduler(domain.SchedulerConfig{Enabled: true, Interval: time.Hour, MaxParallel: 1}, syncer, []string{"alice"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	require.Eventually(t, func() bool { return syncer.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
