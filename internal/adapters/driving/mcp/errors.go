// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-drive.
// It lets AI assistants read a user's selected documents and trigger syncs.
package mcp

import "errors"

var (
	// ErrMissingSyncService is returned when the sync service is not provided.
	ErrMissingSyncService = errors.New("mcp: sync service is required")

	// ErrMissingSelectionService is returned when the selection service is not provided.
	ErrMissingSelectionService = errors.New("mcp: selection service is required")
)
