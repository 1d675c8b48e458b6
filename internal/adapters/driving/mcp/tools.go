package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// UserInput identifies the user a tool acts for.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose drive and index to use"`
}

// DocumentOutput is one selected document.
type DocumentOutput struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	MimeType    string    `json:"mime_type,omitempty"`
	WebViewLink string    `json:"web_view_link,omitempty"`
	ModifiedAt  time.Time `json:"modified_at,omitempty"`
	Content     string    `json:"content"`
}

// SelectedDocumentsOutput is the output schema for get_selected_documents.
type SelectedDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// SetSelectedInput is the input schema for set_selected.
type SetSelectedInput struct {
	UserID   string `json:"user_id" jsonschema:"the user whose index to change"`
	FileID   string `json:"file_id" jsonschema:"the Drive file ID"`
	Selected bool   `json:"selected" jsonschema:"whether the document is included in retrieval contexts"`
}

// IndexOutput reports a single-document index operation.
type IndexOutput struct {
	FileID          string `json:"file_id"`
	VectorsUpserted int    `json:"vectors_upserted"`
}

// SyncInput is the input schema for the sync tool.
type SyncInput struct {
	UserID string `json:"user_id" jsonschema:"the user to sync"`
	Full   bool   `json:"full,omitempty" jsonschema:"force a full sync instead of an incremental one"`
}

// SyncOutput summarises a finished sync run.
type SyncOutput struct {
	SyncLogID        string   `json:"sync_log_id"`
	SyncType         string   `json:"sync_type"`
	Status           string   `json:"status"`
	ChangesProcessed int      `json:"changes_processed"`
	Errors           []string `json:"errors,omitempty"`
}

// SyncFileInput is the input schema for the sync_file tool.
type SyncFileInput struct {
	UserID string `json:"user_id" jsonschema:"the user who owns the file"`
	FileID string `json:"file_id" jsonschema:"the Drive file ID"`
	Event  string `json:"event,omitempty" jsonschema:"open, close or change (default change)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_selected_documents",
		Description: "Return the full text of every document the user has selected",
	}, s.handleGetSelectedDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_selected",
		Description: "Include or exclude an indexed document from retrieval contexts",
	}, s.handleSetSelected)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync",
		Description: "Sync the user's Google Drive into their index (incremental unless full is set)",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_file",
		Description: "Re-index a single Drive file after it was opened, closed or changed",
	}, s.handleSyncFile)
}

func (s *Server) handleGetSelectedDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UserInput,
) (*mcp.CallToolResult, SelectedDocumentsOutput, error) {
	docs, err := s.ports.Selection.GetSelectedDocuments(ctx, input.UserID)
	if err != nil {
		return nil, SelectedDocumentsOutput{}, err
	}

	output := SelectedDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

func (s *Server) handleSetSelected(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetSelectedInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	result := s.ports.Selection.SetSelected(ctx, input.UserID, input.FileID, input.Selected)
	if !result.Success {
		return nil, IndexOutput{}, result.Error()
	}
	return nil, IndexOutput{FileID: input.FileID, VectorsUpserted: result.VectorsUpserted}, nil
}

func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	var (
		log *domain.SyncLog
		err error
	)
	if input.Full {
		log, err = s.ports.Sync.FullSync(ctx, input.UserID)
	} else {
		log, err = s.ports.Sync.Sync(ctx, input.UserID)
	}
	if log == nil {
		if err == nil {
			err = fmt.Errorf("sync for %s returned no log", input.UserID)
		}
		return nil, SyncOutput{}, err
	}

	// A finished run with item failures still reports its log.
	return nil, SyncOutput{
		SyncLogID:        log.ID,
		SyncType:         string(log.SyncType),
		Status:           string(log.Status),
		ChangesProcessed: log.ChangesProcessed,
		Errors:           log.Errors,
	}, nil
}

func (s *Server) handleSyncFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncFileInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	event := domain.FileEventChange
	if input.Event != "" {
		var err error
		if event, err = domain.ParseFileEvent(input.Event); err != nil {
			return nil, IndexOutput{}, err
		}
	}

	result := s.ports.Sync.HandleFileEvent(ctx, input.UserID, input.FileID, event)
	if !result.Success {
		return nil, IndexOutput{}, result.Error()
	}
	return nil, IndexOutput{FileID: input.FileID, VectorsUpserted: result.VectorsUpserted}, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:          doc.ID,
		Title:       doc.Title,
		MimeType:    doc.MimeType,
		WebViewLink: doc.WebViewLink,
		ModifiedAt:  doc.ModifiedAt,
		Content:     doc.Content,
	}
}
