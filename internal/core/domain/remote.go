package domain

import "time"

// MimeTypeFolder identifies folders in the remote store.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// RemoteItem is one entry of a folder listing.
type RemoteItem struct {
	ID           string
	Name         string
	MimeType     string
	ModifiedTime time.Time

	// Parents lists the containing folder IDs visible to the user. It is
	// empty for items shared with the user outside their own folders.
	Parents []string
}

// IsFolder reports whether the item is a folder.
func (i RemoteItem) IsFolder() bool {
	return i.MimeType == MimeTypeFolder
}

// ListPage is one page of a paginated listing.
type ListPage struct {
	Items []RemoteItem

	// NextPageToken is empty on the last page.
	NextPageToken string
}

// RemoteFile is the full metadata of a remote file.
type RemoteFile struct {
	ID           string
	Name         string
	MimeType     string
	CreatedTime  time.Time
	ModifiedTime time.Time
	Owners       []string
	Parents      []string
	WebViewLink  string
	Version      int64
	Size         int64
	Permissions  []Permission
}

// RawContent is downloaded or exported file content prior to text extraction.
type RawContent struct {
	FileID string
	Name   string

	// MIMEType is the type of Data, which differs from the file's type for exports.
	MIMEType string

	Data []byte
}

// PermissionType is the grantee kind of a sharing grant.
type PermissionType string

// Permission types supported by the remote store.
const (
	PermissionUser   PermissionType = "user"
	PermissionGroup  PermissionType = "group"
	PermissionDomain PermissionType = "domain"
	PermissionAnyone PermissionType = "anyone"
)

// PermissionRole is the access level of a sharing grant.
type PermissionRole string

// Permission roles supported by the remote store.
const (
	RoleOwner     PermissionRole = "owner"
	RoleWriter    PermissionRole = "writer"
	RoleCommenter PermissionRole = "commenter"
	RoleReader    PermissionRole = "reader"
)

// Permission is a sharing grant on a remote file or folder.
type Permission struct {
	ID           string
	Type         PermissionType
	Role         PermissionRole
	EmailAddress string
	Domain       string
}

// Principal returns the identity a grant applies to, for access control lists.
func (p Permission) Principal() string {
	switch p.Type {
	case PermissionDomain:
		return p.Domain
	case PermissionAnyone:
		return string(PermissionAnyone)
	default:
		if p.EmailAddress != "" {
			return p.EmailAddress
		}
		return p.ID
	}
}

// AccessControlFrom derives the access control list for a file from its owners and grants.
func AccessControlFrom(owners []string, perms []Permission) AccessControl {
	acl := AccessControl{}
	if len(owners) > 0 {
		acl.OwnerID = owners[0]
	}
	for _, p := range perms {
		switch p.Role {
		case RoleOwner:
			if acl.OwnerID == "" {
				acl.OwnerID = p.Principal()
			}
		case RoleWriter:
			acl.Writers = append(acl.Writers, p.Principal())
		case RoleReader, RoleCommenter:
			acl.Readers = append(acl.Readers, p.Principal())
		}
	}
	return acl
}

// PropagationReport summarises a recursive permission change.
type PropagationReport struct {
	// NodesVisited counts files and folders the change was attempted on.
	NodesVisited int

	// Failures maps node IDs to the error that stopped the change there.
	Failures map[string]string
}

// OK reports whether every node was updated.
func (r PropagationReport) OK() bool {
	return len(r.Failures) == 0
}
