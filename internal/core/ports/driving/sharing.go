package driving

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// SharingService changes sharing on a folder tree.
type SharingService interface {
	// Share grants perm on every file and folder below folderID.
	Share(ctx context.Context, userID, folderID string, perm domain.Permission) (domain.PropagationReport, error)

	// Unshare removes every "anyone" grant below folderID.
	Unshare(ctx context.Context, userID, folderID string) (domain.PropagationReport, error)
}
