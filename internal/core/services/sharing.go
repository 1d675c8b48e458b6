package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// Ensure SharingService implements the interface.
var _ driving.SharingService = (*SharingService)(nil)

// SharingService changes sharing on a folder and everything below it.
type SharingService struct {
	remotes driven.RemoteStoreFactory
}

// NewSharingService creates a sharing service.
func NewSharingService(remotes driven.RemoteStoreFactory) *SharingService {
	return &SharingService{remotes: remotes}
}

// Share grants perm on folderID and every node below it.
func (s *SharingService) Share(ctx context.Context, userID, folderID string, perm domain.Permission) (domain.PropagationReport, error) {
	if err := validateGrant(perm); err != nil {
		return domain.PropagationReport{}, err
	}
	store, err := s.remotes.Open(ctx, userID)
	if err != nil {
		return domain.PropagationReport{}, fmt.Errorf("open remote store: %w", err)
	}

	err = store.CreatePermission(ctx, folderID, perm)
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return domain.PropagationReport{}, fmt.Errorf("share %s: %w", folderID, err)
	}

	report := NewPermissionPropagator(store).ApplyRecursively(ctx, folderID, perm)
	report.NodesVisited++
	logger.Info("Shared %s with %s: %d nodes, %d failures", folderID, perm.Principal(), report.NodesVisited, len(report.Failures))
	return report, nil
}

// Unshare removes every "anyone" grant from folderID and every node below it.
func (s *SharingService) Unshare(ctx context.Context, userID, folderID string) (domain.PropagationReport, error) {
	store, err := s.remotes.Open(ctx, userID)
	if err != nil {
		return domain.PropagationReport{}, fmt.Errorf("open remote store: %w", err)
	}

	perms, err := store.ListPermissions(ctx, folderID)
	if err != nil {
		return domain.PropagationReport{}, fmt.Errorf("unshare %s: %w", folderID, err)
	}
	for _, p := range perms {
		if p.Type != domain.PermissionAnyone {
			continue
		}
		if err := store.DeletePermission(ctx, folderID, p.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.PropagationReport{}, fmt.Errorf("unshare %s: %w", folderID, err)
		}
	}

	report := NewPermissionPropagator(store).RemoveAnyoneRecursively(ctx, folderID)
	report.NodesVisited++
	logger.Info("Unshared %s: %d nodes, %d failures", folderID, report.NodesVisited, len(report.Failures))
	return report, nil
}

func validateGrant(perm domain.Permission) error {
	switch perm.Role {
	case domain.RoleReader, domain.RoleCommenter, domain.RoleWriter:
	default:
		return fmt.Errorf("%w: role %q cannot be granted", domain.ErrInvalidInput, perm.Role)
	}
	switch perm.Type {
	case domain.PermissionAnyone:
		return nil
	case domain.PermissionUser, domain.PermissionGroup:
		if perm.EmailAddress == "" {
			return fmt.Errorf("%w: %s grant needs an email address", domain.ErrInvalidInput, perm.Type)
		}
		return nil
	case domain.PermissionDomain:
		if perm.Domain == "" {
			return fmt.Errorf("%w: domain grant needs a domain", domain.ErrInvalidInput)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown grantee type %q", domain.ErrInvalidInput, perm.Type)
	}
}
