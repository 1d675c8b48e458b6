package domain

import (
	"strconv"
	"strings"
	"time"
)

// ChunkIDSeparator joins a base document ID and a chunk index to form the
// vector ID of every chunk after the first.
const ChunkIDSeparator = "_chunk_"

// Document represents a remote file normalised for indexing.
// It is rebuilt from remote metadata on every file sync.
type Document struct {
	// ID is the remote file ID. It is also the base ID shared by all chunks.
	ID string

	// Title is the remote file name.
	Title string

	// MimeType is the remote MIME type (before any export conversion).
	MimeType string

	// CreatedAt is the remote creation time.
	CreatedAt time.Time

	// ModifiedAt is the remote modification time.
	ModifiedAt time.Time

	// OwnerID is the email or ID of the first remote owner.
	OwnerID string

	// ParentFolderID is the first remote parent folder, empty at the root.
	ParentFolderID string

	// WebViewLink opens the file in a browser.
	WebViewLink string

	// Version is the remote revision counter.
	Version int64

	// AccessControl mirrors the remote sharing grants.
	AccessControl AccessControl

	// Content is the full extracted text before chunking.
	Content string

	// IsSelected controls inclusion in retrieval contexts.
	IsSelected bool

	// LastSyncTime is when this document was last pulled from the remote store.
	LastSyncTime time.Time
}

// AccessControl lists who can read and write a document.
type AccessControl struct {
	OwnerID string
	Readers []string
	Writers []string
}

// Chunk is one byte-bounded segment of a document stored as a vector record.
type Chunk struct {
	// VectorID is the record ID inside the user's namespace.
	VectorID string

	// Embedding is the vector for Metadata.Content.
	Embedding []float32

	// Metadata is stored alongside the vector.
	Metadata ChunkMetadata
}

// ChunkMetadata is the metadata schema persisted for every chunk.
type ChunkMetadata struct {
	// BaseDocumentID is the ID of the source document shared by all its chunks.
	BaseDocumentID string

	// ChunkIndex is the position of this chunk, in [0, TotalChunks).
	ChunkIndex int

	// TotalChunks is the number of chunks the document was split into.
	TotalChunks int

	// Content is the chunk text.
	Content string

	// IsSelected mirrors the owning document's selection state.
	IsSelected bool

	// LastModified is the remote modification time of the document.
	LastModified time.Time

	// Title is the document title, kept for display of retrieved chunks.
	Title string
}

// ChunkVectorID returns the vector ID for chunk index of a base document.
// The first chunk reuses the base ID so single-chunk documents are addressable directly.
func ChunkVectorID(baseID string, index int) string {
	if index == 0 {
		return baseID
	}
	return baseID + ChunkIDSeparator + strconv.Itoa(index)
}

// ChunkIndexOf returns the chunk index of vectorID within the document
// baseID. Base IDs may themselves contain ChunkIDSeparator, so the index is
// only read from the suffix after baseID.
func ChunkIndexOf(baseID, vectorID string) (int, bool) {
	if vectorID == baseID {
		return 0, true
	}
	suffix, ok := strings.CutPrefix(vectorID, baseID+ChunkIDSeparator)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n <= 0 || strconv.Itoa(n) != suffix {
		return 0, false
	}
	return n, true
}
