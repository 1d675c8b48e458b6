package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_RunsUntilCancelled(t *testing.T) {
	sched := &mockScheduler{}
	lock := &mockLocker{}
	withServices(t, Services{Scheduler: sched, Lock: lock})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out, err := execute(t, ctx, "serve", "--metrics-addr", "")

	require.NoError(t, err)
	assert.True(t, sched.started)
	assert.True(t, sched.stopped)
	assert.True(t, lock.acquired)
	assert.True(t, lock.released)
	assert.Contains(t, out, "Scheduler running.")
}

func TestServeCmd_LockHeld(t *testing.T) {
	sched := &mockScheduler{}
	lock := &mockLocker{acquireErr: errBoom}
	withServices(t, Services{Scheduler: sched, Lock: lock})

	_, err := execute(t, context.Background(), "serve")

	require.ErrorIs(t, err, errBoom)
	assert.False(t, sched.started)
}

func TestServeCmd_MCPNeedsServices(t *testing.T) {
	withServices(t, Services{Scheduler: &mockScheduler{}})

	_, err := execute(t, context.Background(), "serve", "--mcp-port", "9999")

	require.Error(t, err)
}

func TestServeCmd_NotConfigured(t *testing.T) {
	withServices(t, Services{})

	_, err := execute(t, context.Background(), "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler service not configured")
}
