package driving

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// Scheduler runs periodic syncs for every configured user.
type Scheduler interface {
	// Start begins running scheduled syncs.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running jobs.
	Stop() error

	// RunOnce syncs every configured user once and returns per-user results.
	RunOnce(ctx context.Context) []domain.JobResult
}
