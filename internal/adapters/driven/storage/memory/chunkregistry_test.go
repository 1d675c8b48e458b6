package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRegistry_PutGetRemove(t *testing.T) {
	reg := NewChunkRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, "user-a", "doc", []string{"doc", "doc_chunk_1"}))

	ids, ok, err := reg.Get(ctx, "user-a", "doc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"doc", "doc_chunk_1"}, ids)

	require.NoError(t, reg.Remove(ctx, "user-a", "doc"))
	_, ok, err = reg.Get(ctx, "user-a", "doc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChunkRegistry_NamespacesAreIsolated(t *testing.T) {
	reg := NewChunkRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, "user-a", "doc", []string{"doc"}))

	_, ok, err := reg.Get(ctx, "user-b", "doc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChunkRegistry_PutReplaces(t *testing.T) {
	reg := NewChunkRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, "ns", "doc", []string{"doc", "doc_chunk_1", "doc_chunk_2"}))
	require.NoError(t, reg.Put(ctx, "ns", "doc", []string{"doc"}))

	ids, _, err := reg.Get(ctx, "ns", "doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc"}, ids)
}
