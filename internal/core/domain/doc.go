// Package domain defines the core business entities for sercha-drive.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A remote file normalised for indexing
//   - Chunk: One byte-bounded segment of a document, stored as a vector
//   - SyncLog: The record of one sync run
//   - SyncState: The per-user watermark for incremental sync
//   - Namespace: The per-user partition of the vector index
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
