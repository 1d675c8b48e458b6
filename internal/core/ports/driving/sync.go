package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// SyncService mirrors a user's remote files into the vector index.
type SyncService interface {
	// FullSync walks the configured root folder and syncs every file.
	FullSync(ctx context.Context, userID string) (*domain.SyncLog, error)

	// IncrementalSync syncs only files modified after since.
	IncrementalSync(ctx context.Context, userID string, since time.Time) (*domain.SyncLog, error)

	// Sync runs an incremental sync from the stored watermark,
	// or a full sync when no watermark exists.
	Sync(ctx context.Context, userID string) (*domain.SyncLog, error)

	// SyncFile re-indexes a single file.
	SyncFile(ctx context.Context, userID, fileID string) domain.IndexResult

	// HandleFileEvent syncs one file in response to a client event.
	HandleFileEvent(ctx context.Context, userID, fileID string, event domain.FileEvent) domain.IndexResult

	// Status returns progress of a running sync for a user.
	Status(ctx context.Context, userID string) (*SyncStatus, error)

	// History returns a user's most recent sync logs, newest first.
	History(ctx context.Context, userID string, limit int) ([]domain.SyncLog, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// UserID identifies the user.
	UserID string

	// Running indicates if sync is currently in progress.
	Running bool

	// SyncType is the kind of the running sync.
	SyncType domain.SyncType

	// DocumentsProcessed is the count of documents processed.
	DocumentsProcessed int

	// ErrorCount is the number of errors encountered.
	ErrorCount int

	// LastSyncTime is the stored watermark, zero if none.
	LastSyncTime time.Time
}
