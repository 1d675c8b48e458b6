package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func sharedTree() *fakeDrive {
	d := newFakeDrive()
	d.addFile("top", "f1", "", t0)
	d.addFolder("top", "sub")
	d.addFile("sub", "f2", "", t0)
	d.addFolder("sub", "deep")
	d.addFile("deep", "f3", "", t0)
	return d
}

func TestPermissionPropagator_ApplyRecursively(t *testing.T) {
	d := sharedTree()
	perm := domain.Permission{Type: domain.PermissionAnyone, Role: domain.RoleReader}

	report := NewPermissionPropagator(d).ApplyRecursively(context.Background(), "top", perm)

	assert.True(t, report.OK())
	assert.Equal(t, 5, report.NodesVisited)
	for _, id := range []string{"f1", "sub", "f2", "deep", "f3"} {
		require.Len(t, d.perms[id], 1, id)
		assert.Equal(t, domain.PermissionAnyone, d.perms[id][0].Type)
	}
}

func TestPermissionPropagator_ApplyRecursively_Idempotent(t *testing.T) {
	d := sharedTree()
	perm := domain.Permission{Type: domain.PermissionUser, Role: domain.RoleWriter, EmailAddress: "bob@example.com"}
	p := NewPermissionPropagator(d)

	first := p.ApplyRecursively(context.Background(), "top", perm)
	second := p.ApplyRecursively(context.Background(), "top", perm)

	assert.True(t, first.OK())
	assert.True(t, second.OK(), "already-exists is tolerated")
	assert.Len(t, d.perms["f3"], 1)
}

func TestPermissionPropagator_ApplyRecursively_PartialFailure(t *testing.T) {
	d := sharedTree()
	d.createErr["f2"] = errors.New("quota exceeded")
	d.listErr["deep"] = errors.New("listing failed")
	perm := domain.Permission{Type: domain.PermissionAnyone, Role: domain.RoleReader}

	report := NewPermissionPropagator(d).ApplyRecursively(context.Background(), "top", perm)

	assert.False(t, report.OK())
	assert.Contains(t, report.Failures["f2"], "quota exceeded")
	assert.Contains(t, report.Failures["deep"], "listing failed")
	assert.Len(t, d.perms["f1"], 1, "failures do not stop other nodes")
	assert.Len(t, d.perms["deep"], 1)
}

func TestPermissionPropagator_RemoveAnyoneRecursively(t *testing.T) {
	d := sharedTree()
	p := NewPermissionPropagator(d)
	ctx := context.Background()
	require.True(t, p.ApplyRecursively(ctx, "top", domain.Permission{Type: domain.PermissionAnyone, Role: domain.RoleReader}).OK())
	require.True(t, p.ApplyRecursively(ctx, "top", domain.Permission{Type: domain.PermissionUser, Role: domain.RoleReader, EmailAddress: "bob@example.com"}).OK())

	report := p.RemoveAnyoneRecursively(ctx, "top")

	assert.True(t, report.OK())
	assert.Equal(t, 5, report.NodesVisited)
	for _, id := range []string{"f1", "sub", "f2", "deep", "f3"} {
		require.Len(t, d.perms[id], 1, id)
		assert.Equal(t, domain.PermissionUser, d.perms[id][0].Type)
	}

	again := p.RemoveAnyoneRecursively(ctx, "top")
	assert.True(t, again.OK())
}

func TestPermissionPropagator_RemoveAnyone_NotFoundTolerated(t *testing.T) {
	d := sharedTree()
	d.perms["f1"] = []domain.Permission{{ID: "a1", Type: domain.PermissionAnyone, Role: domain.RoleReader}}
	d.deleteErr["f1"] = domain.ErrNotFound

	report := NewPermissionPropagator(d).RemoveAnyoneRecursively(context.Background(), "top")

	assert.True(t, report.OK())
}
