package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 4, cfg.MaxParallel)
}

func TestJobResult_Success(t *testing.T) {
	completed := &SyncLog{Status: SyncCompleted}
	failed := &SyncLog{Status: SyncFailed}

	tests := []struct {
		name   string
		result JobResult
		want   bool
	}{
		{"completed log", JobResult{Log: completed}, true},
		{"failed log", JobResult{Log: failed}, false},
		{"no log", JobResult{}, false},
		{"error with log", JobResult{Log: completed, Error: "boom"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Success())
		})
	}
}
