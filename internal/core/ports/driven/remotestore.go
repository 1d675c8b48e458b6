package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// RemoteStore is one user's view of the hierarchical remote file store.
// Implementations wrap failures with domain sentinels (ErrNotAuthenticated,
// ErrRateLimited, ErrNotFound, ErrAlreadyExists) so the core can classify them.
type RemoteStore interface {
	// List returns one page of a folder's direct children.
	// An empty pageToken requests the first page.
	List(ctx context.Context, folderID, pageToken string) (*domain.ListPage, error)

	// ListModifiedSince returns one page of non-folder items modified after since,
	// anywhere in the drive.
	ListModifiedSince(ctx context.Context, since time.Time, pageToken string) (*domain.ListPage, error)

	// Get returns a file's metadata including owners, parents and permissions.
	Get(ctx context.Context, fileID string) (*domain.RemoteFile, error)

	// Download returns the file content, exported to a text format where the
	// remote type has no raw bytes.
	Download(ctx context.Context, file *domain.RemoteFile) (*domain.RawContent, error)

	// ListPermissions returns the sharing grants on a file or folder.
	ListPermissions(ctx context.Context, fileID string) ([]domain.Permission, error)

	// CreatePermission adds a sharing grant.
	CreatePermission(ctx context.Context, fileID string, perm domain.Permission) error

	// DeletePermission removes a sharing grant by ID.
	DeletePermission(ctx context.Context, fileID, permissionID string) error
}

// RemoteStoreFactory opens a RemoteStore authenticated as a user.
// Returns an error wrapping domain.ErrNotAuthenticated when the user has no
// usable credentials.
type RemoteStoreFactory interface {
	Open(ctx context.Context, userID string) (RemoteStore, error)
}
