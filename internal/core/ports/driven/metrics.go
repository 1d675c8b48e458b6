package driven

import "github.com/custodia-labs/sercha-drive/internal/core/domain"

// SyncMetrics receives sync outcomes for monitoring. Optional.
type SyncMetrics interface {
	// ObserveRun records a finalised sync run.
	ObserveRun(log *domain.SyncLog)

	// ObserveFile records the outcome of one file sync.
	ObserveFile(userID string, result domain.IndexResult)
}
