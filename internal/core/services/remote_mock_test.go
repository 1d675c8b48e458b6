package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// --- Fake remote store shared by walker, permission and sync tests ---

// fakeDrive implements driven.RemoteStore over an in-memory tree.
type fakeDrive struct {
	mu sync.Mutex

	pageSize int
	children map[string][]domain.RemoteItem
	files    map[string]*domain.RemoteFile
	contents map[string]string
	perms    map[string][]domain.Permission

	listErr      map[string]error
	getErr       map[string]error
	changesErr   error
	createErr    map[string]error
	deleteErr    map[string]error
	listCalls    int
	createCalls  map[string]int
	deletedPerms map[string][]string
	nextPermID   int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		pageSize:     2,
		children:     make(map[string][]domain.RemoteItem),
		files:        make(map[string]*domain.RemoteFile),
		contents:     make(map[string]string),
		perms:        make(map[string][]domain.Permission),
		listErr:      make(map[string]error),
		getErr:       make(map[string]error),
		createErr:    make(map[string]error),
		deleteErr:    make(map[string]error),
		createCalls:  make(map[string]int),
		deletedPerms: make(map[string][]string),
	}
}

func (d *fakeDrive) addFolder(parentID, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.children[parentID] = append(d.children[parentID], domain.RemoteItem{
		ID: id, Name: id, MimeType: domain.MimeTypeFolder, Parents: []string{parentID},
	})
	d.files[id] = &domain.RemoteFile{
		ID: id, Name: id, MimeType: domain.MimeTypeFolder, Parents: []string{parentID},
	}
}

func (d *fakeDrive) addFile(parentID, id, content string, modified time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.children[parentID] = append(d.children[parentID], domain.RemoteItem{
		ID: id, Name: id, MimeType: "text/plain", ModifiedTime: modified, Parents: []string{parentID},
	})
	d.files[id] = &domain.RemoteFile{
		ID:           id,
		Name:         id + ".txt",
		MimeType:     "text/plain",
		CreatedTime:  modified.Add(-time.Hour),
		ModifiedTime: modified,
		Owners:       []string{"owner@example.com"},
		Parents:      []string{parentID},
		WebViewLink:  "https://drive.example.com/" + id,
		Version:      1,
		Permissions: []domain.Permission{
			{ID: "p-owner", Type: domain.PermissionUser, Role: domain.RoleOwner, EmailAddress: "owner@example.com"},
			{ID: "p-reader", Type: domain.PermissionUser, Role: domain.RoleReader, EmailAddress: "reader@example.com"},
		},
	}
	d.contents[id] = content
}

// addShared registers a file outside every folder, as Drive reports files
// shared with the user.
func (d *fakeDrive) addShared(id, content string, modified time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[id] = &domain.RemoteFile{
		ID: id, Name: id + ".txt", MimeType: "text/plain", ModifiedTime: modified, Version: 1,
	}
	d.contents[id] = content
}

func (d *fakeDrive) setContent(id, content string, modified time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contents[id] = content
	d.files[id].ModifiedTime = modified
	d.files[id].Version++
}

func page(items []domain.RemoteItem, token string, size int) (*domain.ListPage, error) {
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", token)
		}
		start = n
	}
	end := min(start+size, len(items))
	p := &domain.ListPage{Items: append([]domain.RemoteItem(nil), items[start:end]...)}
	if end < len(items) {
		p.NextPageToken = strconv.Itoa(end)
	}
	return p, nil
}

func (d *fakeDrive) List(_ context.Context, folderID, pageToken string) (*domain.ListPage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listCalls++
	if err := d.listErr[folderID]; err != nil {
		return nil, err
	}
	return page(d.children[folderID], pageToken, d.pageSize)
}

func (d *fakeDrive) ListModifiedSince(_ context.Context, since time.Time, pageToken string) (*domain.ListPage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.changesErr != nil {
		return nil, d.changesErr
	}
	var changed []domain.RemoteItem
	for _, f := range d.files {
		if f.ModifiedTime.After(since) {
			changed = append(changed, domain.RemoteItem{
				ID: f.ID, Name: f.Name, MimeType: f.MimeType, ModifiedTime: f.ModifiedTime, Parents: f.Parents,
			})
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })
	return page(changed, pageToken, d.pageSize)
}

func (d *fakeDrive) Get(_ context.Context, fileID string) (*domain.RemoteFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.getErr[fileID]; err != nil {
		return nil, err
	}
	f, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (d *fakeDrive) Download(_ context.Context, file *domain.RemoteFile) (*domain.RawContent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &domain.RawContent{
		FileID:   file.ID,
		Name:     file.Name,
		MIMEType: file.MimeType,
		Data:     []byte(d.contents[file.ID]),
	}, nil
}

func (d *fakeDrive) ListPermissions(_ context.Context, fileID string) ([]domain.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Permission(nil), d.perms[fileID]...), nil
}

func (d *fakeDrive) CreatePermission(_ context.Context, fileID string, perm domain.Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createCalls[fileID]++
	if err := d.createErr[fileID]; err != nil {
		return err
	}
	for _, p := range d.perms[fileID] {
		if p.Type == perm.Type && p.Role == perm.Role && p.EmailAddress == perm.EmailAddress {
			return fmt.Errorf("grant on %s: %w", fileID, domain.ErrAlreadyExists)
		}
	}
	d.nextPermID++
	perm.ID = fmt.Sprintf("perm-%d", d.nextPermID)
	d.perms[fileID] = append(d.perms[fileID], perm)
	return nil
}

func (d *fakeDrive) DeletePermission(_ context.Context, fileID, permissionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.deleteErr[fileID]; err != nil {
		return err
	}
	kept := d.perms[fileID][:0]
	found := false
	for _, p := range d.perms[fileID] {
		if p.ID == permissionID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	d.perms[fileID] = kept
	if !found {
		return fmt.Errorf("permission %s: %w", permissionID, domain.ErrNotFound)
	}
	d.deletedPerms[fileID] = append(d.deletedPerms[fileID], permissionID)
	return nil
}

// fakeRemotes implements driven.RemoteStoreFactory.
type fakeRemotes struct {
	drives  map[string]*fakeDrive
	openErr error
}

func (f *fakeRemotes) Open(_ context.Context, userID string) (driven.RemoteStore, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	d, ok := f.drives[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotAuthenticated)
	}
	return d, nil
}

// plainExtractor implements driven.TextExtractor by decoding bytes as text.
type plainExtractor struct {
	fail map[string]error
}

func (e *plainExtractor) Extract(_ context.Context, raw *domain.RawContent) (string, error) {
	if err := e.fail[raw.FileID]; err != nil {
		return "", err
	}
	return string(raw.Data), nil
}

var (
	_ driven.RemoteStore        = (*fakeDrive)(nil)
	_ driven.RemoteStoreFactory = (*fakeRemotes)(nil)
	_ driven.TextExtractor      = (*plainExtractor)(nil)
)
