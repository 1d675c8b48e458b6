package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// folderScope decides whether an item lies under the sync root by following
// its parent chain. Results are cached per folder for the life of one run.
type folderScope struct {
	store driven.RemoteStore
	roots map[string]bool
	known map[string]bool
}

// newFolderScope resolves rootID, which may be an alias such as "root", to
// the folder's real ID so both forms match.
func newFolderScope(ctx context.Context, store driven.RemoteStore, rootID string) *folderScope {
	s := &folderScope{
		store: store,
		roots: map[string]bool{rootID: true},
		known: make(map[string]bool),
	}
	if root, err := store.Get(ctx, rootID); err == nil && root.ID != "" {
		s.roots[root.ID] = true
	} else if err != nil {
		logger.Debug("Could not resolve sync root %s: %v", rootID, err)
	}
	return s
}

// contains reports whether any ancestor of an item with the given parents is
// the sync root. Folders the user cannot read end the chain.
func (s *folderScope) contains(ctx context.Context, parents []string) (bool, error) {
	for _, id := range parents {
		in, err := s.folderInScope(ctx, id, make(map[string]bool))
		if err != nil || in {
			return in, err
		}
	}
	return false, nil
}

func (s *folderScope) folderInScope(ctx context.Context, folderID string, visiting map[string]bool) (bool, error) {
	if s.roots[folderID] {
		return true, nil
	}
	if in, ok := s.known[folderID]; ok {
		return in, nil
	}
	if visiting[folderID] {
		return false, nil
	}
	visiting[folderID] = true

	folder, err := s.store.Get(ctx, folderID)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPermissionDenied):
		s.known[folderID] = false
		return false, nil
	case err != nil:
		return false, err
	}

	in := false
	for _, parent := range folder.Parents {
		if in, err = s.folderInScope(ctx, parent, visiting); err != nil {
			return false, err
		}
		if in {
			break
		}
	}
	s.known[folderID] = in
	return in, nil
}
