package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for sercha-drive resources.
	uriScheme = "sercha-drive://"

	// historyLimit caps the sync logs returned with a status resource.
	historyLimit = 10
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/selected",
		Name:        "selected-documents",
		Description: "Documents a user has selected for retrieval",
		MIMEType:    "application/json",
	}, s.handleSelectedResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/documents/{fileId}",
		Name:        "document-content",
		Description: "Full text of a selected document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/status",
		Name:        "sync-status",
		Description: "Current sync status and recent sync runs of a user",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleSelectedResource lists a user's selected documents without their content.
func (s *Server) handleSelectedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID, rest := splitUserURI(req.Params.URI)
	if userID == "" || rest != "selected" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Selection.GetSelectedDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing selected documents: %w", err)
	}

	type docInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		WebViewLink string `json:"web_view_link,omitempty"`
	}
	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{ID: docs[i].ID, Title: docs[i].Title, WebViewLink: docs[i].WebViewLink}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleDocumentContentResource returns the content of one selected document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID, rest := splitUserURI(req.Params.URI)
	fileID, ok := strings.CutPrefix(rest, "documents/")
	if userID == "" || !ok || fileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Selection.GetSelectedDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing selected documents: %w", err)
	}
	for i := range docs {
		if docs[i].ID == fileID {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     docs[i].Content,
				}},
			}, nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleStatusResource returns the live status plus recent history.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID, rest := splitUserURI(req.Params.URI)
	if userID == "" || rest != "status" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Sync.Status(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting sync status: %w", err)
	}
	history, err := s.ports.Sync.History(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing sync history: %w", err)
	}

	type runInfo struct {
		ID               string `json:"id"`
		SyncType         string `json:"sync_type"`
		Status           string `json:"status"`
		StartTime        string `json:"start_time"`
		ChangesProcessed int    `json:"changes_processed"`
		Errors           int    `json:"errors"`
	}
	out := struct {
		Running            bool      `json:"running"`
		SyncType           string    `json:"sync_type,omitempty"`
		DocumentsProcessed int       `json:"documents_processed"`
		LastSyncTime       string    `json:"last_sync_time,omitempty"`
		History            []runInfo `json:"history"`
	}{
		Running:            status.Running,
		SyncType:           string(status.SyncType),
		DocumentsProcessed: status.DocumentsProcessed,
		History:            make([]runInfo, len(history)),
	}
	if !status.LastSyncTime.IsZero() {
		out.LastSyncTime = status.LastSyncTime.UTC().Format(time.RFC3339)
	}
	for i, l := range history {
		out.History[i] = runInfo{
			ID:               l.ID,
			SyncType:         string(l.SyncType),
			Status:           string(l.Status),
			StartTime:        l.StartTime.UTC().Format(time.RFC3339),
			ChangesProcessed: l.ChangesProcessed,
			Errors:           len(l.Errors),
		}
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// splitUserURI splits sercha-drive://users/{userId}/{rest} into its user ID and remainder.
func splitUserURI(uri string) (userID, rest string) {
	const prefix = uriScheme + "users/"

	tail, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", ""
	}
	userID, rest, ok = strings.Cut(tail, "/")
	if !ok {
		return "", ""
	}
	return userID, rest
}
