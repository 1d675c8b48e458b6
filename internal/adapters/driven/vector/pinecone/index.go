package pinecone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// Metadata keys stored on every vector.
const (
	keyBaseDocumentID = "baseDocumentId"
	keyChunkIndex     = "chunkIndex"
	keyTotalChunks    = "totalChunks"
	keyContent        = "content"
	keyIsSelected     = "isSelected"
	keyLastModified   = "lastModified"
	keyTitle          = "title"
)

// MaxTopK is the most matches Pinecone returns when metadata is included.
// Larger requests are clamped, so lookups over more records than this see
// only the first MaxTopK.
const MaxTopK = 1000

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a VectorIndex backed by one Pinecone index.
type Index struct {
	c *client
}

// New creates a Pinecone-backed index.
func New(cfg Config) (*Index, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Index{c: c}, nil
}

// Upsert inserts or replaces vectors by ID.
func (x *Index) Upsert(ctx context.Context, ns domain.Namespace, vectors []driven.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	wire := make([]wireVector, len(vectors))
	for i, v := range vectors {
		wire[i] = wireVector{ID: v.ID, Values: v.Values, Metadata: encodeMetadata(v.Metadata)}
	}
	_, err := x.c.upsert(ctx, upsertRequest{Vectors: wire, Namespace: x.namespace(ns)})
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Query returns up to TopK matches with metadata. TopK is capped at MaxTopK.
func (x *Index) Query(ctx context.Context, ns domain.Namespace, req driven.QueryRequest) ([]driven.VectorMatch, error) {
	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("%w: query vector required", domain.ErrInvalidInput)
	}
	topK := req.TopK
	switch {
	case topK <= 0:
		topK = 10
	case topK > MaxTopK:
		logger.Debug("Pinecone query topK %d clamped to %d", topK, MaxTopK)
		topK = MaxTopK
	}

	resp, err := x.c.query(ctx, queryRequest{
		Namespace:       x.namespace(ns),
		Vector:          req.Vector,
		TopK:            topK,
		Filter:          encodeFilter(req.Filter),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	matches := make([]driven.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		matches = append(matches, driven.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: decodeMetadata(m.Metadata),
		})
	}
	return matches, nil
}

// Update sets metadata fields on one vector.
func (x *Index) Update(ctx context.Context, ns domain.Namespace, id string, patch driven.MetadataPatch) error {
	set := map[string]any{}
	if patch.IsSelected != nil {
		set[keyIsSelected] = *patch.IsSelected
	}
	if len(set) == 0 {
		return nil
	}
	if err := x.c.update(ctx, updateRequest{ID: id, SetMetadata: set, Namespace: x.namespace(ns)}); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	return nil
}

// Delete removes vectors by ID.
func (x *Index) Delete(ctx context.Context, ns domain.Namespace, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := x.c.delete(ctx, deleteRequest{IDs: ids, Namespace: x.namespace(ns)}); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Fetch returns the vectors that exist among ids.
func (x *Index) Fetch(ctx context.Context, ns domain.Namespace, ids []string) (map[string]driven.Vector, error) {
	result := make(map[string]driven.Vector, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	resp, err := x.c.fetch(ctx, x.namespace(ns), ids)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	for id, v := range resp.Vectors {
		result[id] = driven.Vector{ID: id, Values: v.Values, Metadata: decodeMetadata(v.Metadata)}
	}
	return result, nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.c.http.CloseIdleConnections()
	return nil
}

func (x *Index) namespace(ns domain.Namespace) string {
	prefix := strings.TrimSpace(x.c.cfg.NamespacePrefix)
	if prefix == "" {
		return ns.String()
	}
	return prefix + ":" + ns.String()
}

func encodeMetadata(md domain.ChunkMetadata) map[string]any {
	m := map[string]any{
		keyBaseDocumentID: md.BaseDocumentID,
		keyChunkIndex:     md.ChunkIndex,
		keyTotalChunks:    md.TotalChunks,
		keyContent:        md.Content,
		keyIsSelected:     md.IsSelected,
		keyTitle:          md.Title,
	}
	if !md.LastModified.IsZero() {
		m[keyLastModified] = md.LastModified.UTC().Format(time.RFC3339)
	}
	return m
}

func decodeMetadata(m map[string]any) domain.ChunkMetadata {
	md := domain.ChunkMetadata{
		BaseDocumentID: stringValue(m[keyBaseDocumentID]),
		ChunkIndex:     intValue(m[keyChunkIndex]),
		TotalChunks:    intValue(m[keyTotalChunks]),
		Content:        stringValue(m[keyContent]),
		Title:          stringValue(m[keyTitle]),
	}
	if b, ok := m[keyIsSelected].(bool); ok {
		md.IsSelected = b
	}
	if t, err := time.Parse(time.RFC3339, stringValue(m[keyLastModified])); err == nil {
		md.LastModified = t
	}
	return md
}

func encodeFilter(f driven.MetadataFilter) map[string]any {
	if f.IsEmpty() {
		return nil
	}
	filter := map[string]any{}
	if f.BaseDocumentID != "" {
		filter[keyBaseDocumentID] = map[string]any{"$eq": f.BaseDocumentID}
	}
	if f.IsSelected != nil {
		filter[keyIsSelected] = map[string]any{"$eq": *f.IsSelected}
	}
	return filter
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// intValue accepts the float64 produced by JSON decoding.
func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
