package services

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

// Ensure SelectionService implements the interface.
var _ driving.SelectionService = (*SelectionService)(nil)

// SelectionService scopes indexer reads and selection writes to a user's namespace.
type SelectionService struct {
	indexer *DocumentIndexer
}

// NewSelectionService creates a selection service.
func NewSelectionService(indexer *DocumentIndexer) *SelectionService {
	return &SelectionService{indexer: indexer}
}

// SetSelected marks every chunk of a file as selected or not.
func (s *SelectionService) SetSelected(ctx context.Context, userID, fileID string, selected bool) domain.IndexResult {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return domain.Failed(err, "select %s", fileID)
	}
	return s.indexer.UpdateSelection(ctx, fileID, selected, ns)
}

// GetSelectedDocuments reconstructs every selected document of a user.
func (s *SelectionService) GetSelectedDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return nil, err
	}
	return s.indexer.GetSelected(ctx, ns)
}

// GetChunkMetadata returns the stored metadata of a document's first chunk.
func (s *SelectionService) GetChunkMetadata(ctx context.Context, userID, fileID string) (*domain.ChunkMetadata, bool, error) {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return nil, false, err
	}
	return s.indexer.GetMetadata(ctx, fileID, ns)
}

// Remove deletes every chunk of a file from a user's index.
func (s *SelectionService) Remove(ctx context.Context, userID, fileID string) domain.IndexResult {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return domain.Failed(err, "remove %s", fileID)
	}
	return s.indexer.Delete(ctx, fileID, ns)
}
