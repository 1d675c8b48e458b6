package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_Exclusive(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	second := New(dir)

	require.NoError(t, first.Acquire())
	err := second.Acquire()
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}

func TestFileLock_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	l := New(dir)

	require.NoError(t, l.Acquire())
	defer l.Release() //nolint:errcheck

	assert.FileExists(t, l.Path())
	assert.Equal(t, filepath.Join(dir, "sercha-drive.lock"), l.Path())
}

func TestFileLock_ReleaseIdempotent(t *testing.T) {
	l := New(t.TempDir())

	assert.NoError(t, l.Release())
	require.NoError(t, l.Acquire())
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}
