package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func TestSyncStateStore_SaveAndGet(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	now := time.Now()
	err := store.Save(ctx, domain.SyncState{UserID: "alice", LastSyncTime: now, LastSyncLogID: "log-1"})
	require.NoError(t, err)

	saved, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.UserID)
	assert.Equal(t, "log-1", saved.LastSyncLogID)
	assert.True(t, now.Equal(saved.LastSyncTime))
}

func TestSyncStateStore_Save_Update(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	t1 := time.Now()
	t2 := t1.Add(time.Hour)
	require.NoError(t, store.Save(ctx, domain.SyncState{UserID: "alice", LastSyncTime: t1}))
	require.NoError(t, store.Save(ctx, domain.SyncState{UserID: "alice", LastSyncTime: t2}))

	saved, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, t2.Equal(saved.LastSyncTime))
}

func TestSyncStateStore_Get_NotFound(t *testing.T) {
	store := NewSyncStateStore()

	state, err := store.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, state)
}

func TestSyncStateStore_Delete(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.SyncState{UserID: "alice"}))
	require.NoError(t, store.Save(ctx, domain.SyncState{UserID: "bob"}))

	require.NoError(t, store.Delete(ctx, "alice"))
	require.NoError(t, store.Delete(ctx, "missing"))

	_, err := store.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(ctx, "bob")
	assert.NoError(t, err)
}

func TestSyncStateStore_Concurrency(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", id)
			_ = store.Save(ctx, domain.SyncState{UserID: user, LastSyncTime: time.Now()})
			_, _ = store.Get(ctx, user)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		_, err := store.Get(ctx, fmt.Sprintf("user-%d", i))
		assert.NoError(t, err)
	}
}

func TestSyncLogStore_SaveGetUpdate(t *testing.T) {
	store := NewSyncLogStore()
	ctx := context.Background()

	log := domain.NewSyncLog("log-1", "alice", domain.SyncFull, time.Now())
	require.NoError(t, store.Save(ctx, log))

	log.RecordError("file %s: boom", "f1")
	log.Finalise(time.Now(), nil)
	require.NoError(t, store.Save(ctx, log))

	got, err := store.Get(ctx, "log-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncFailed, got.Status)
	assert.Equal(t, []string{"file f1: boom"}, got.Errors)
}

func TestSyncLogStore_SaveCopiesErrors(t *testing.T) {
	store := NewSyncLogStore()
	ctx := context.Background()

	log := domain.NewSyncLog("log-1", "alice", domain.SyncFull, time.Now())
	log.RecordError("first")
	require.NoError(t, store.Save(ctx, log))
	log.RecordError("second")

	got, err := store.Get(ctx, "log-1")
	require.NoError(t, err)
	assert.Len(t, got.Errors, 1)
}

func TestSyncLogStore_Save_Invalid(t *testing.T) {
	store := NewSyncLogStore()

	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), &domain.SyncLog{}), domain.ErrInvalidInput)
}

func TestSyncLogStore_Get_NotFound(t *testing.T) {
	_, err := NewSyncLogStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncLogStore_List(t *testing.T) {
	store := NewSyncLogStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		log := domain.NewSyncLog(fmt.Sprintf("a-%d", i), "alice", domain.SyncIncremental, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Save(ctx, log))
	}
	require.NoError(t, store.Save(ctx, domain.NewSyncLog("b-0", "bob", domain.SyncFull, base)))

	all, err := store.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a-3", all[0].ID)
	assert.Equal(t, "a-0", all[3].ID)

	limited, err := store.List(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a-3", limited[0].ID)
	assert.Equal(t, "a-2", limited[1].ID)

	none, err := store.List(ctx, "carol", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
