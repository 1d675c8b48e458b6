package driven

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// VectorIndex stores chunk vectors and their metadata, partitioned by namespace.
// Every operation is scoped to one namespace; IDs never collide across namespaces.
type VectorIndex interface {
	// Upsert inserts or replaces vectors by ID.
	Upsert(ctx context.Context, ns domain.Namespace, vectors []Vector) error

	// Query returns up to TopK matches ranked by similarity to Vector,
	// restricted to records that satisfy Filter.
	Query(ctx context.Context, ns domain.Namespace, req QueryRequest) ([]VectorMatch, error)

	// Update changes metadata on one record without touching its vector.
	Update(ctx context.Context, ns domain.Namespace, id string, patch MetadataPatch) error

	// Delete removes records by ID. Missing IDs are ignored.
	Delete(ctx context.Context, ns domain.Namespace, ids []string) error

	// Fetch returns the records that exist among ids, keyed by ID.
	Fetch(ctx context.Context, ns domain.Namespace, ids []string) (map[string]Vector, error)

	// Close releases resources.
	Close() error
}

// Vector is one stored record.
type Vector struct {
	ID       string
	Values   []float32
	Metadata domain.ChunkMetadata
}

// QueryRequest describes a similarity query.
type QueryRequest struct {
	// Vector is the query embedding. For metadata-only lookups a placeholder
	// is passed and ranking is meaningless.
	Vector []float32

	// TopK caps the number of matches.
	TopK int

	// Filter restricts matches by metadata.
	Filter MetadataFilter
}

// MetadataFilter restricts a query to matching metadata. Zero fields match anything.
type MetadataFilter struct {
	// BaseDocumentID matches chunks of one document.
	BaseDocumentID string

	// IsSelected matches on selection state when non-nil.
	IsSelected *bool
}

// IsEmpty reports whether the filter matches every record.
func (f MetadataFilter) IsEmpty() bool {
	return f.BaseDocumentID == "" && f.IsSelected == nil
}

// Matches reports whether metadata satisfies the filter.
func (f MetadataFilter) Matches(md domain.ChunkMetadata) bool {
	if f.BaseDocumentID != "" && md.BaseDocumentID != f.BaseDocumentID {
		return false
	}
	if f.IsSelected != nil && md.IsSelected != *f.IsSelected {
		return false
	}
	return true
}

// MetadataPatch lists metadata fields to overwrite. Nil fields are left unchanged.
type MetadataPatch struct {
	IsSelected *bool
}

// VectorMatch is one query result.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata domain.ChunkMetadata
}
