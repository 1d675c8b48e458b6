package drive

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/sercha-drive/internal/connectors/google"
	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RemoteStore = (*Store)(nil)

// Store is one user's Google Drive, rate limited and with errors mapped to domain sentinels.
type Store struct {
	svc     *drive.Service
	cfg     Config
	limiter *google.RateLimiter
}

// NewStore wraps an authenticated Drive service.
func NewStore(svc *drive.Service, cfg Config, limiter *google.RateLimiter) *Store {
	if limiter == nil {
		limiter = google.NewRateLimiter()
	}
	return &Store{svc: svc, cfg: cfg.withDefaults(), limiter: limiter}
}

// call waits for the rate limiter, runs fn and classifies its error.
func (s *Store) call(ctx context.Context, fn func() error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	err := fn()
	if err == nil {
		return nil
	}
	if google.IsRateLimited(err) {
		s.limiter.RecordRateLimitError(google.RetryAfter(err))
	}
	return google.WrapError(err)
}

// List returns one page of a folder's non-trashed children.
func (s *Store) List(ctx context.Context, folderID, pageToken string) (*domain.ListPage, error) {
	q := fmt.Sprintf("%s in parents and trashed = false", quote(folderID))
	return s.list(ctx, q, pageToken)
}

// ListModifiedSince returns one page of non-folder files modified after since.
func (s *Store) ListModifiedSince(ctx context.Context, since time.Time, pageToken string) (*domain.ListPage, error) {
	q := fmt.Sprintf("modifiedTime > %s and mimeType != %s and trashed = false",
		quote(since.UTC().Format(time.RFC3339)), quote(domain.MimeTypeFolder))
	return s.list(ctx, q, pageToken)
}

func (s *Store) list(ctx context.Context, q, pageToken string) (*domain.ListPage, error) {
	var resp *drive.FileList
	err := s.call(ctx, func() error {
		req := s.svc.Files.List().
			Q(q).
			PageSize(s.cfg.PageSize).
			Fields(listFields).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		var err error
		resp, err = req.Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	page := &domain.ListPage{
		Items:         make([]domain.RemoteItem, 0, len(resp.Files)),
		NextPageToken: resp.NextPageToken,
	}
	for _, f := range resp.Files {
		if f != nil {
			page.Items = append(page.Items, toRemoteItem(f))
		}
	}
	return page, nil
}

// Get returns a file's full metadata.
func (s *Store) Get(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
	var f *drive.File
	err := s.call(ctx, func() error {
		var err error
		f, err = s.svc.Files.Get(fileID).
			Fields(fileFields).
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}
	return toRemoteFile(f), nil
}

// Download exports Workspace files to text and downloads everything else.
// Folders, other Workspace types, filtered types and oversized files are
// reported as domain.ErrUnsupportedType without a request.
func (s *Store) Download(ctx context.Context, file *domain.RemoteFile) (*domain.RawContent, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if format, ok := ExportFormat(file.MimeType); ok {
		return s.export(ctx, file, format)
	}

	switch {
	case file.MimeType == domain.MimeTypeFolder, IsWorkspaceType(file.MimeType):
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, file.MimeType)
	case s.cfg.Downloadable != nil && !s.cfg.Downloadable(file.MimeType):
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, file.MimeType)
	case file.Size > s.cfg.MaxDownloadSize:
		return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrUnsupportedType, file.Name, file.Size)
	}

	var data []byte
	err := s.call(ctx, func() error {
		resp, err := s.svc.Files.Get(file.ID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return err
		}
		data, err = readLimited(resp, s.cfg.MaxDownloadSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", file.ID, err)
	}
	return &domain.RawContent{FileID: file.ID, Name: file.Name, MIMEType: file.MimeType, Data: data}, nil
}

func (s *Store) export(ctx context.Context, file *domain.RemoteFile, format string) (*domain.RawContent, error) {
	var data []byte
	err := s.call(ctx, func() error {
		resp, err := s.svc.Files.Export(file.ID, format).Context(ctx).Download()
		if err != nil {
			return err
		}
		data, err = readLimited(resp, s.cfg.MaxDownloadSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", file.ID, err)
	}
	return &domain.RawContent{FileID: file.ID, Name: file.Name, MIMEType: format, Data: data}, nil
}

// ListPermissions returns every sharing grant on a file or folder.
func (s *Store) ListPermissions(ctx context.Context, fileID string) ([]domain.Permission, error) {
	var (
		perms     []domain.Permission
		pageToken string
	)
	for {
		var resp *drive.PermissionList
		err := s.call(ctx, func() error {
			req := s.svc.Permissions.List(fileID).
				Fields(permissionFields).
				SupportsAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}
			var err error
			resp, err = req.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list permissions %s: %w", fileID, err)
		}
		for _, p := range resp.Permissions {
			if p != nil {
				perms = append(perms, toPermission(p))
			}
		}
		if resp.NextPageToken == "" {
			return perms, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreatePermission adds a grant without sending notification emails.
func (s *Store) CreatePermission(ctx context.Context, fileID string, perm domain.Permission) error {
	err := s.call(ctx, func() error {
		req := s.svc.Permissions.Create(fileID, fromPermission(perm)).
			SupportsAllDrives(true).
			Context(ctx)
		if perm.Type == domain.PermissionUser || perm.Type == domain.PermissionGroup {
			req = req.SendNotificationEmail(false)
		}
		_, err := req.Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("create permission on %s: %w", fileID, err)
	}
	return nil
}

// DeletePermission removes a grant.
func (s *Store) DeletePermission(ctx context.Context, fileID, permissionID string) error {
	if permissionID == "" {
		return fmt.Errorf("%w: permission ID is required", domain.ErrInvalidInput)
	}
	err := s.call(ctx, func() error {
		return s.svc.Permissions.Delete(fileID, permissionID).
			SupportsAllDrives(true).
			Context(ctx).
			Do()
	})
	if err != nil {
		return fmt.Errorf("delete permission %s on %s: %w", permissionID, fileID, err)
	}
	return nil
}
