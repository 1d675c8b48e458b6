package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure stores implement the interfaces.
var (
	_ driven.SyncStateStore = (*SyncStateStore)(nil)
	_ driven.SyncLogStore   = (*SyncLogStore)(nil)
)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.SyncState
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{
		states: make(map[string]domain.SyncState),
	}
}

// Save stores or updates sync state.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.UserID] = state
	return nil
}

// Get retrieves sync state for a user.
func (s *SyncStateStore) Get(_ context.Context, userID string) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// Delete removes sync state for a user.
func (s *SyncStateStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

// SyncLogStore is an in-memory implementation of driven.SyncLogStore.
type SyncLogStore struct {
	mu   sync.RWMutex
	logs map[string]domain.SyncLog
}

// NewSyncLogStore creates a new in-memory sync log store.
func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{
		logs: make(map[string]domain.SyncLog),
	}
}

// Save creates or updates a log by ID.
func (s *SyncLogStore) Save(_ context.Context, log *domain.SyncLog) error {
	if log == nil || log.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *log
	stored.Errors = append([]string(nil), log.Errors...)
	s.logs[log.ID] = stored
	return nil
}

// Get retrieves a log by ID.
func (s *SyncLogStore) Get(_ context.Context, id string) (*domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &log, nil
}

// List returns a user's most recent logs, newest first.
func (s *SyncLogStore) List(_ context.Context, userID string, limit int) ([]domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SyncLog
	for _, log := range s.logs {
		if log.UserID == userID {
			result = append(result, log)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.After(result[j].StartTime)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
