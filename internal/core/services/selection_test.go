package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func TestSelectionService(t *testing.T) {
	f := newIndexerFixture(6, true)
	svc := NewSelectionService(f.indexer)
	ctx := context.Background()

	require.True(t, f.indexer.Upsert(ctx, testDoc("f1", "selected document text"), nsAlice).Success)
	require.True(t, f.indexer.Upsert(ctx, testDoc("f2", "other"), nsAlice).Success)

	res := svc.SetSelected(ctx, "alice", "f1", true)
	require.True(t, res.Success)

	docs, err := svc.GetSelectedDocuments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "selected document text", docs[0].Content)

	md, ok, err := svc.GetChunkMetadata(ctx, "alice", "f1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, md.IsSelected)

	bobDocs, err := svc.GetSelectedDocuments(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobDocs)

	require.True(t, svc.SetSelected(ctx, "alice", "f1", false).Success)
	docs, err = svc.GetSelectedDocuments(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.True(t, svc.Remove(ctx, "alice", "f1").Success)
	_, ok, err = svc.GetChunkMetadata(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectionService_InvalidUser(t *testing.T) {
	svc := NewSelectionService(newIndexerFixture(6, true).indexer)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetSelected(ctx, "", "f1", true).Error(), domain.ErrInvalidInput)
	_, err := svc.GetSelectedDocuments(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Remove(ctx, "", "f1").Error(), domain.ErrInvalidInput)
}
