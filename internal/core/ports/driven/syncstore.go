package driven

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// SyncStateStore persists the per-user watermark.
type SyncStateStore interface {
	// Save stores or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a user.
	// Returns domain.ErrNotFound if the user has never completed a sync.
	Get(ctx context.Context, userID string) (*domain.SyncState, error)

	// Delete removes sync state for a user, forcing the next sync to be full.
	Delete(ctx context.Context, userID string) error
}

// SyncLogStore persists the history of sync runs.
type SyncLogStore interface {
	// Save creates or updates a log by ID.
	Save(ctx context.Context, log *domain.SyncLog) error

	// Get retrieves a log by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.SyncLog, error)

	// List returns a user's most recent logs, newest first.
	// A non-positive limit returns all logs.
	List(ctx context.Context, userID string, limit int) ([]domain.SyncLog, error)
}

// ChunkRegistry records which vector IDs belong to each base document.
type ChunkRegistry interface {
	// Put replaces the chunk IDs recorded for a document.
	Put(ctx context.Context, ns domain.Namespace, baseID string, chunkIDs []string) error

	// Get returns the recorded chunk IDs in index order.
	// The boolean is false when nothing is recorded for the document.
	Get(ctx context.Context, ns domain.Namespace, baseID string) ([]string, bool, error)

	// Remove forgets a document. Missing entries are ignored.
	Remove(ctx context.Context, ns domain.Namespace, baseID string) error
}
