package domain

import "time"

// SchedulerConfig holds configuration for periodic per-user sync jobs.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Interval defines how often every user is synced.
	Interval time.Duration

	// MaxParallel bounds how many users sync at once.
	MaxParallel int
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:     true,
		Interval:    1 * time.Hour,
		MaxParallel: 4,
	}
}

// JobResult represents the outcome of one scheduled sync job.
type JobResult struct {
	// UserID identifies whose drive was synced.
	UserID string

	// StartedAt is when the job started.
	StartedAt time.Time

	// EndedAt is when the job completed.
	EndedAt time.Time

	// Log is the finalised sync log, nil if the run never started.
	Log *SyncLog

	// Error contains the error message if the job could not run.
	Error string
}

// Success indicates whether the job ran and its log completed.
func (r JobResult) Success() bool {
	return r.Error == "" && r.Log != nil && r.Log.Status == SyncCompleted
}
