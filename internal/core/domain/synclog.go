package domain

import (
	"fmt"
	"strings"
	"time"
)

// SyncType distinguishes full from incremental runs.
type SyncType string

// Sync types.
const (
	SyncFull        SyncType = "full"
	SyncIncremental SyncType = "incremental"
)

// SyncStatus is the lifecycle state of a SyncLog.
type SyncStatus string

// Sync statuses.
const (
	SyncInProgress SyncStatus = "in_progress"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncLog records one sync run for one user.
// It is created when the run starts and finalised exactly once when it ends.
type SyncLog struct {
	ID               string
	UserID           string
	StartTime        time.Time
	EndTime          time.Time
	Status           SyncStatus
	SyncType         SyncType
	ChangesProcessed int
	Errors           []string
}

// NewSyncLog opens a log in the in-progress state.
func NewSyncLog(id, userID string, syncType SyncType, start time.Time) *SyncLog {
	return &SyncLog{
		ID:        id,
		UserID:    userID,
		StartTime: start,
		Status:    SyncInProgress,
		SyncType:  syncType,
	}
}

// RecordError appends a per-item failure.
func (l *SyncLog) RecordError(format string, args ...any) {
	l.Errors = append(l.Errors, fmt.Sprintf(format, args...))
}

// Finalised reports whether the log has left the in-progress state.
func (l *SyncLog) Finalised() bool {
	return l.Status != SyncInProgress
}

// Finalise stamps the end time and settles the status.
// A run with a fatal error or any item error is failed. Later calls are no-ops.
func (l *SyncLog) Finalise(end time.Time, runErr error) {
	if l.Finalised() {
		return
	}
	l.EndTime = end
	if runErr != nil {
		l.Errors = append(l.Errors, runErr.Error())
	}
	if len(l.Errors) > 0 {
		l.Status = SyncFailed
		return
	}
	l.Status = SyncCompleted
}

// ErrorText joins all recorded errors.
func (l *SyncLog) ErrorText() string {
	return strings.Join(l.Errors, "; ")
}

// SyncState is the per-user watermark.
type SyncState struct {
	// UserID identifies the user the watermark belongs to.
	UserID string

	// LastSyncTime scopes the next incremental sync's change query.
	LastSyncTime time.Time

	// LastSyncLogID references the run that produced the watermark.
	LastSyncLogID string
}

// FileEvent is a client-reported interaction with a single file.
type FileEvent string

// File events. Each maps to one file sync.
const (
	FileEventOpen   FileEvent = "open"
	FileEventClose  FileEvent = "close"
	FileEventChange FileEvent = "change"
)

// ParseFileEvent validates a file event name.
func ParseFileEvent(s string) (FileEvent, error) {
	switch e := FileEvent(strings.ToLower(strings.TrimSpace(s))); e {
	case FileEventOpen, FileEventClose, FileEventChange:
		return e, nil
	default:
		return "", fmt.Errorf("%w: unknown file event %q", ErrInvalidInput, s)
	}
}
