package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	log     *domain.SyncLog
	err     error
	result  domain.IndexResult
	status  *driving.SyncStatus
	history []domain.SyncLog

	fullCalls  int
	syncCalls  int
	lastEvent  domain.FileEvent
	lastFileID string
}

func (m *mockSyncService) FullSync(_ context.Context, _ string) (*domain.SyncLog, error) {
	m.fullCalls++
	return m.log, m.err
}

func (m *mockSyncService) IncrementalSync(_ context.Context, _ string, _ time.Time) (*domain.SyncLog, error) {
	return m.log, m.err
}

func (m *mockSyncService) Sync(_ context.Context, _ string) (*domain.SyncLog, error) {
	m.syncCalls++
	return m.log, m.err
}

func (m *mockSyncService) SyncFile(_ context.Context, _, fileID string) domain.IndexResult {
	m.lastFileID = fileID
	return m.result
}

func (m *mockSyncService) HandleFileEvent(_ context.Context, _, fileID string, event domain.FileEvent) domain.IndexResult {
	m.lastFileID = fileID
	m.lastEvent = event
	return m.result
}

func (m *mockSyncService) Status(_ context.Context, userID string) (*driving.SyncStatus, error) {
	if m.status != nil {
		return m.status, m.err
	}
	return &driving.SyncStatus{UserID: userID}, m.err
}

func (m *mockSyncService) History(_ context.Context, _ string, _ int) ([]domain.SyncLog, error) {
	return m.history, m.err
}

// mockSelectionService is a mock implementation of driving.SelectionService.
type mockSelectionService struct {
	documents []domain.Document
	result    domain.IndexResult
	err       error

	lastFileID   string
	lastSelected bool
}

func (m *mockSelectionService) SetSelected(_ context.Context, _, fileID string, selected bool) domain.IndexResult {
	m.lastFileID = fileID
	m.lastSelected = selected
	return m.result
}

func (m *mockSelectionService) GetSelectedDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockSelectionService) GetChunkMetadata(_ context.Context, _, _ string) (*domain.ChunkMetadata, bool, error) {
	return nil, false, m.err
}

func (m *mockSelectionService) Remove(_ context.Context, _, _ string) domain.IndexResult {
	return m.result
}

func newTestServer(t *testing.T, sync *mockSyncService, selection *mockSelectionService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Sync: sync, Selection: selection})
	require.NoError(t, err)
	return server
}
