package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// VisitFunc is called for every non-folder item found by a walk.
type VisitFunc func(ctx context.Context, item domain.RemoteItem)

// ListErrorFunc is called when a folder below the root cannot be listed.
type ListErrorFunc func(folderID string, err error)

// TreeWalker enumerates a folder tree in the remote store.
// It holds no state between calls.
type TreeWalker struct {
	store driven.RemoteStore
}

// NewTreeWalker creates a walker over one user's remote store.
func NewTreeWalker(store driven.RemoteStore) *TreeWalker {
	return &TreeWalker{store: store}
}

// ListChildren returns every direct child of folderID, following page tokens.
func (w *TreeWalker) ListChildren(ctx context.Context, folderID string) ([]domain.RemoteItem, error) {
	var items []domain.RemoteItem
	token := ""
	for {
		page, err := w.store.List(ctx, folderID, token)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folderID, err)
		}
		items = append(items, page.Items...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return items, nil
		}
		token = page.NextPageToken
	}
}

// Walk visits every file below rootID depth-first: a subfolder's contents are
// visited before the subfolder's later siblings. Pending folders are kept on
// an explicit stack, so depth is bounded only by memory.
//
// Failing to list the root is returned. Failing to list a deeper folder is
// reported to onError and the walk continues. Folders reachable by more than
// one path are walked once.
func (w *TreeWalker) Walk(ctx context.Context, rootID string, visit VisitFunc, onError ListErrorFunc) error {
	type frame struct {
		items []domain.RemoteItem
		next  int
	}

	root, err := w.ListChildren(ctx, rootID)
	if err != nil {
		return err
	}
	seen := map[string]bool{rootID: true}
	stack := []*frame{{items: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.items) {
			stack = stack[:len(stack)-1]
			continue
		}
		item := top.items[top.next]
		top.next++

		if !item.IsFolder() {
			visit(ctx, item)
			continue
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		children, err := w.ListChildren(ctx, item.ID)
		if err != nil {
			if onError != nil {
				onError(item.ID, err)
			}
			continue
		}
		stack = append(stack, &frame{items: children})
	}
	return nil
}
