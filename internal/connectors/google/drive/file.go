package drive

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// Google Workspace MIME types that can be exported.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"

	workspacePrefix = "application/vnd.google-apps."
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// exportFormats maps Workspace types to the text format they are exported as.
var exportFormats = map[string]string{
	MimeTypeGoogleDoc:    ExportMimeText,
	MimeTypeGoogleSheet:  ExportMimeCSV,
	MimeTypeGoogleSlides: ExportMimeText,
}

// Partial response field sets.
const (
	listFields       = "nextPageToken, files(id, name, mimeType, modifiedTime, parents)"
	fileFields       = "id, name, mimeType, createdTime, modifiedTime, owners(emailAddress, permissionId), parents, webViewLink, version, size, permissions(id, type, role, emailAddress, domain)"
	permissionFields = "nextPageToken, permissions(id, type, role, emailAddress, domain)"
)

// ExportFormat returns the export MIME type for a Workspace file, if any.
func ExportFormat(mimeType string) (string, bool) {
	format, ok := exportFormats[mimeType]
	return format, ok
}

// IsWorkspaceType reports whether a MIME type is a native Google type without raw bytes.
func IsWorkspaceType(mimeType string) bool {
	return strings.HasPrefix(mimeType, workspacePrefix)
}

func toRemoteItem(f *drive.File) domain.RemoteItem {
	return domain.RemoteItem{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: parseTime(f.ModifiedTime),
		Parents:      f.Parents,
	}
}

func toRemoteFile(f *drive.File) *domain.RemoteFile {
	file := &domain.RemoteFile{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		CreatedTime:  parseTime(f.CreatedTime),
		ModifiedTime: parseTime(f.ModifiedTime),
		Parents:      f.Parents,
		WebViewLink:  ResolveWebURL(f.Id, f.WebViewLink),
		Version:      f.Version,
		Size:         f.Size,
	}
	for _, owner := range f.Owners {
		if owner == nil {
			continue
		}
		id := owner.EmailAddress
		if id == "" {
			id = owner.PermissionId
		}
		file.Owners = append(file.Owners, id)
	}
	for _, p := range f.Permissions {
		if p != nil {
			file.Permissions = append(file.Permissions, toPermission(p))
		}
	}
	return file
}

func toPermission(p *drive.Permission) domain.Permission {
	return domain.Permission{
		ID:           p.Id,
		Type:         domain.PermissionType(p.Type),
		Role:         domain.PermissionRole(p.Role),
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
	}
}

func fromPermission(p domain.Permission) *drive.Permission {
	return &drive.Permission{
		Type:         string(p.Type),
		Role:         string(p.Role),
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
	}
}

// parseTime reads an RFC 3339 timestamp; the zero time means absent or malformed.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// readLimited reads a download body, failing with ErrUnsupportedType past limit.
func readLimited(resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", domain.ErrUnsupportedType, limit)
	}
	return data, nil
}

// quote escapes a value for use inside a single-quoted Drive query literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
