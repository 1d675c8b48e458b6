package driving

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// SelectionService manages which documents are included in retrieval contexts.
type SelectionService interface {
	// SetSelected marks every chunk of a file as selected or not.
	SetSelected(ctx context.Context, userID, fileID string, selected bool) domain.IndexResult

	// GetSelectedDocuments reconstructs the full text of every selected document.
	GetSelectedDocuments(ctx context.Context, userID string) ([]domain.Document, error)

	// GetChunkMetadata returns the stored metadata of a document's first chunk.
	GetChunkMetadata(ctx context.Context, userID, fileID string) (*domain.ChunkMetadata, bool, error)

	// Remove deletes every chunk of a file from the user's index.
	Remove(ctx context.Context, userID, fileID string) domain.IndexResult
}
