package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// PermissionPropagator applies sharing changes to every node of a folder tree.
// Changes are not transactional; rerunning after a partial failure is safe.
type PermissionPropagator struct {
	store  driven.RemoteStore
	walker *TreeWalker
}

// NewPermissionPropagator creates a propagator over one user's remote store.
func NewPermissionPropagator(store driven.RemoteStore) *PermissionPropagator {
	return &PermissionPropagator{store: store, walker: NewTreeWalker(store)}
}

// ApplyRecursively grants perm on every file and folder below folderID.
// Grants that already exist count as success.
func (p *PermissionPropagator) ApplyRecursively(ctx context.Context, folderID string, perm domain.Permission) domain.PropagationReport {
	return p.propagate(ctx, folderID, func(ctx context.Context, item domain.RemoteItem) error {
		err := p.store.CreatePermission(ctx, item.ID, perm)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return err
	})
}

// RemoveAnyoneRecursively deletes every "anyone" grant below folderID.
// Grants that have already gone count as success.
func (p *PermissionPropagator) RemoveAnyoneRecursively(ctx context.Context, folderID string) domain.PropagationReport {
	return p.propagate(ctx, folderID, func(ctx context.Context, item domain.RemoteItem) error {
		perms, err := p.store.ListPermissions(ctx, item.ID)
		if err != nil {
			return err
		}
		for _, perm := range perms {
			if perm.Type != domain.PermissionAnyone {
				continue
			}
			if err := p.store.DeletePermission(ctx, item.ID, perm.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return nil
	})
}

// propagate calls change on each node below folderID, breadth-first.
func (p *PermissionPropagator) propagate(
	ctx context.Context,
	folderID string,
	change func(context.Context, domain.RemoteItem) error,
) domain.PropagationReport {
	report := domain.PropagationReport{Failures: make(map[string]string)}
	queue := []string{folderID}
	seen := map[string]bool{folderID: true}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			report.Failures[queue[0]] = err.Error()
			break
		}
		current := queue[0]
		queue = queue[1:]

		children, err := p.walker.ListChildren(ctx, current)
		if err != nil {
			report.Failures[current] = err.Error()
			logger.Warn("Could not list %s: %v", current, err)
			continue
		}

		for _, child := range children {
			report.NodesVisited++
			if err := change(ctx, child); err != nil {
				report.Failures[child.ID] = fmt.Sprintf("%s: %v", child.Name, err)
				logger.Warn("Permission change on %s failed: %v", child.ID, err)
			}
			if child.IsFolder() && !seen[child.ID] {
				seen[child.ID] = true
				queue = append(queue, child.ID)
			}
		}
	}
	return report
}
