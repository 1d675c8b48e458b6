package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func TestSharingService_ShareAndUnshare(t *testing.T) {
	d := sharedTree()
	svc := NewSharingService(&fakeRemotes{drives: map[string]*fakeDrive{"alice": d}})
	ctx := context.Background()
	anyone := domain.Permission{Type: domain.PermissionAnyone, Role: domain.RoleReader}

	report, err := svc.Share(ctx, "alice", "top", anyone)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 6, report.NodesVisited)
	assert.Len(t, d.perms["top"], 1)
	assert.Len(t, d.perms["f3"], 1)

	report, err = svc.Unshare(ctx, "alice", "top")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, d.perms["top"])
	assert.Empty(t, d.perms["f3"])
}

func TestSharingService_Share_Validation(t *testing.T) {
	svc := NewSharingService(&fakeRemotes{drives: map[string]*fakeDrive{"alice": sharedTree()}})
	ctx := context.Background()

	tests := []domain.Permission{
		{Type: domain.PermissionAnyone, Role: domain.RoleOwner},
		{Type: domain.PermissionUser, Role: domain.RoleReader},
		{Type: domain.PermissionDomain, Role: domain.RoleReader},
		{Type: "robot", Role: domain.RoleReader},
	}
	for _, perm := range tests {
		_, err := svc.Share(ctx, "alice", "top", perm)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", perm)
	}
}

func TestSharingService_NotAuthenticated(t *testing.T) {
	svc := NewSharingService(&fakeRemotes{drives: map[string]*fakeDrive{}})

	_, err := svc.Unshare(context.Background(), "nobody", "top")

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
