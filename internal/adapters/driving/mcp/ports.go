package mcp

import (
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync runs syncs and reports their status.
	Sync driving.SyncService

	// Selection reads and changes which documents are selected.
	Selection driving.SelectionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	if p.Selection == nil {
		return ErrMissingSelectionService
	}
	return nil
}
