package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

const (
	// MaxChunkQueryTopK caps metadata-filter queries used to find chunks.
	// Documents or selections with more chunks than this are truncated.
	// Adapters may cap lower; Pinecone returns at most 1000 matches.
	MaxChunkQueryTopK = 10000

	// DeleteBatchSize is the number of IDs sent per delete call.
	DeleteBatchSize = 1000

	// defaultDimensions is used for placeholder vectors when no embedder is configured.
	defaultDimensions = 1536
)

// DocumentIndexer writes documents into a user's namespace as chunk vectors
// and reads them back. Every write returns an IndexResult and never panics.
type DocumentIndexer struct {
	splitter driven.TextSplitter
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	registry driven.ChunkRegistry
	retry    RetryConfig
}

// NewDocumentIndexer creates an indexer. The registry is optional; without it
// chunk lookups fall back to a metadata filter query.
func NewDocumentIndexer(
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	registry driven.ChunkRegistry,
) *DocumentIndexer {
	return &DocumentIndexer{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		registry: registry,
		retry:    DefaultRetryConfig(),
	}
}

// SetRetryConfig replaces the backoff used for rate-limited calls.
func (ix *DocumentIndexer) SetRetryConfig(cfg RetryConfig) {
	ix.retry = cfg
}

// Upsert splits doc into chunks, embeds each one and writes it to ns.
// A failing chunk stops the document; chunks already written are kept and
// overwritten by the next successful upsert. Chunks left over from a longer
// previous version are deleted once every new chunk is written.
func (ix *DocumentIndexer) Upsert(ctx context.Context, doc *domain.Document, ns domain.Namespace) domain.IndexResult {
	if err := ix.ready(); err != nil {
		return domain.Failed(err, "upsert %s", doc.ID)
	}

	previous, err := ix.chunkIDs(ctx, ns, doc.ID)
	if err != nil {
		logger.Warn("Could not look up existing chunks of %s: %v", doc.ID, err)
	}

	texts := ix.splitter.Split(doc.Content)
	total := len(texts)
	ids := make([]string, 0, total)

	for i, text := range texts {
		id := domain.ChunkVectorID(doc.ID, i)
		if err := ix.upsertChunk(ctx, doc, ns, id, i, total, text); err != nil {
			// Keep every ID that may now exist so Delete and UpdateSelection reach it.
			ix.recordChunks(ctx, ns, doc.ID, mergeIDs(previous, ids, []string{id}))
			return domain.Failed(err, "upsert %s", doc.ID)
		}
		ids = append(ids, id)
	}

	var stale []string
	for _, id := range previous {
		if index, ok := domain.ChunkIndexOf(doc.ID, id); !ok || index >= total {
			stale = append(stale, id)
		}
	}
	recorded := ids
	if len(stale) > 0 {
		if err := ix.deleteBatched(ctx, ns, stale); err != nil {
			logger.Warn("Could not delete %d stale chunks of %s: %v", len(stale), doc.ID, err)
			recorded = mergeIDs(ids, stale)
		} else {
			logger.Debug("Deleted %d stale chunks of %s", len(stale), doc.ID)
		}
	}
	ix.recordChunks(ctx, ns, doc.ID, recorded)

	logger.Debug("Indexed %s as %d chunks", doc.ID, total)
	return domain.Succeeded(total)
}

func (ix *DocumentIndexer) upsertChunk(
	ctx context.Context,
	doc *domain.Document,
	ns domain.Namespace,
	id string,
	index, total int,
	text string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values, err := ix.embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed chunk %d of %s: %w", index, doc.ID, err)
	}

	vector := driven.Vector{
		ID:     id,
		Values: values,
		Metadata: domain.ChunkMetadata{
			BaseDocumentID: doc.ID,
			ChunkIndex:     index,
			TotalChunks:    total,
			Content:        text,
			IsSelected:     doc.IsSelected,
			LastModified:   doc.ModifiedAt,
			Title:          doc.Title,
		},
	}
	if err := ix.index.Upsert(ctx, ns, []driven.Vector{vector}); err != nil {
		return fmt.Errorf("upsert chunk %d of %s: %w", index, doc.ID, err)
	}
	return nil
}

func (ix *DocumentIndexer) recordChunks(ctx context.Context, ns domain.Namespace, baseID string, ids []string) {
	if ix.registry == nil {
		return
	}
	if err := ix.registry.Put(ctx, ns, baseID, ids); err != nil {
		logger.Warn("Could not record chunks of %s: %v", baseID, err)
	}
}

// mergeIDs returns the union of lists in first-seen order.
func mergeIDs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// UpdateSelection sets IsSelected on every chunk of fileID.
func (ix *DocumentIndexer) UpdateSelection(ctx context.Context, fileID string, selected bool, ns domain.Namespace) domain.IndexResult {
	if ix.index == nil {
		return domain.Failed(domain.ErrVectorIndexUnavailable, "update selection of %s", fileID)
	}

	ids, err := ix.chunkIDs(ctx, ns, fileID)
	if err != nil {
		return domain.Failed(err, "find chunks of %s", fileID)
	}
	if len(ids) == 0 {
		return domain.Failed(domain.ErrNotFound, "no chunks indexed for %s", fileID)
	}

	patch := driven.MetadataPatch{IsSelected: &selected}
	updated := 0
	for n, id := range ids {
		err := ix.index.Update(ctx, ns, id, patch)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// The registry may list a chunk whose write failed.
			logger.Debug("Chunk %s of %s is not in the index", id, fileID)
		case err != nil:
			return domain.Failed(err, "update chunk %s after %d of %d", id, n, len(ids))
		default:
			updated++
		}
	}
	if updated == 0 {
		return domain.Failed(domain.ErrNotFound, "no chunks indexed for %s", fileID)
	}
	return domain.Succeeded(updated)
}

// Delete removes every chunk of fileID. Deleting a document with no chunks succeeds.
func (ix *DocumentIndexer) Delete(ctx context.Context, fileID string, ns domain.Namespace) domain.IndexResult {
	if ix.index == nil {
		return domain.Failed(domain.ErrVectorIndexUnavailable, "delete %s", fileID)
	}

	ids, err := ix.chunkIDs(ctx, ns, fileID)
	if err != nil {
		return domain.Failed(err, "find chunks of %s", fileID)
	}
	if err := ix.deleteBatched(ctx, ns, ids); err != nil {
		return domain.Failed(err, "delete chunks of %s", fileID)
	}
	if ix.registry != nil {
		if err := ix.registry.Remove(ctx, ns, fileID); err != nil {
			logger.Warn("Could not forget chunks of %s: %v", fileID, err)
		}
	}
	return domain.Succeeded(len(ids))
}

// GetSelected reassembles every selected document in ns, ordered by ID.
// A document with missing chunks is returned with the chunks it has.
func (ix *DocumentIndexer) GetSelected(ctx context.Context, ns domain.Namespace) ([]domain.Document, error) {
	if ix.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	selected := true
	matches, err := ix.query(ctx, ns, driven.MetadataFilter{IsSelected: &selected})
	if err != nil {
		return nil, fmt.Errorf("query selected chunks: %w", err)
	}

	groups := make(map[string][]domain.ChunkMetadata)
	for _, m := range matches {
		groups[m.Metadata.BaseDocumentID] = append(groups[m.Metadata.BaseDocumentID], m.Metadata)
	}

	docs := make([]domain.Document, 0, len(groups))
	for baseID, chunks := range groups {
		docs = append(docs, reassemble(baseID, chunks))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// GetMetadata fetches the metadata stored on the first chunk of fileID.
// The boolean is false when nothing is indexed under that ID.
func (ix *DocumentIndexer) GetMetadata(ctx context.Context, fileID string, ns domain.Namespace) (*domain.ChunkMetadata, bool, error) {
	if ix.index == nil {
		return nil, false, domain.ErrVectorIndexUnavailable
	}

	vectors, err := ix.index.Fetch(ctx, ns, []string{fileID})
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", fileID, err)
	}
	v, ok := vectors[fileID]
	if !ok {
		return nil, false, nil
	}
	md := v.Metadata
	return &md, true, nil
}

// reassemble slots chunks by index and joins them.
func reassemble(baseID string, chunks []domain.ChunkMetadata) domain.Document {
	total := 0
	for _, c := range chunks {
		if c.TotalChunks > total {
			total = c.TotalChunks
		}
	}

	slots := make([]string, total)
	filled := make([]bool, total)
	doc := domain.Document{ID: baseID, IsSelected: true}
	for _, c := range chunks {
		if c.ChunkIndex < 0 || c.ChunkIndex >= total {
			logger.Warn("%s: chunk index %d of %s outside [0, %d)", domain.KindDataIntegrity, c.ChunkIndex, baseID, total)
			continue
		}
		slots[c.ChunkIndex] = c.Content
		filled[c.ChunkIndex] = true
		if c.ChunkIndex == 0 || doc.Title == "" {
			doc.Title = c.Title
		}
		if c.LastModified.After(doc.ModifiedAt) {
			doc.ModifiedAt = c.LastModified
		}
	}

	var missing []string
	for i, ok := range filled {
		if !ok {
			missing = append(missing, fmt.Sprint(i))
		}
	}
	if len(missing) > 0 {
		logger.Warn("%s: %s is missing chunks [%s] of %d", domain.KindDataIntegrity, baseID, strings.Join(missing, ","), total)
	}

	doc.Content = strings.Join(slots, "")
	return doc
}

// chunkIDs returns the vector IDs of every chunk of baseID, in index order.
func (ix *DocumentIndexer) chunkIDs(ctx context.Context, ns domain.Namespace, baseID string) ([]string, error) {
	if ix.registry != nil {
		ids, ok, err := ix.registry.Get(ctx, ns, baseID)
		switch {
		case err != nil:
			logger.Warn("Chunk registry lookup for %s failed, querying index: %v", baseID, err)
		case ok:
			return ids, nil
		}
	}

	matches, err := ix.query(ctx, ns, driven.MetadataFilter{BaseDocumentID: baseID})
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Metadata.ChunkIndex < matches[j].Metadata.ChunkIndex
	})
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids, nil
}

// query runs a metadata-only lookup. The query vector is a placeholder.
func (ix *DocumentIndexer) query(ctx context.Context, ns domain.Namespace, filter driven.MetadataFilter) ([]driven.VectorMatch, error) {
	req := driven.QueryRequest{
		Vector: placeholderVector(ix.dimensions()),
		TopK:   MaxChunkQueryTopK,
		Filter: filter,
	}
	return retryRateLimited(ctx, ix.retry, "query", func() ([]driven.VectorMatch, error) {
		return ix.index.Query(ctx, ns, req)
	})
}

func (ix *DocumentIndexer) embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return placeholderVector(ix.dimensions()), nil
	}
	return retryRateLimited(ctx, ix.retry, "embed", func() ([]float32, error) {
		return ix.embedder.Embed(ctx, text)
	})
}

func (ix *DocumentIndexer) deleteBatched(ctx context.Context, ns domain.Namespace, ids []string) error {
	for start := 0; start < len(ids); start += DeleteBatchSize {
		end := min(start+DeleteBatchSize, len(ids))
		if err := ix.index.Delete(ctx, ns, ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ix *DocumentIndexer) dimensions() int {
	if ix.embedder != nil && ix.embedder.Dimensions() > 0 {
		return ix.embedder.Dimensions()
	}
	return defaultDimensions
}

func (ix *DocumentIndexer) ready() error {
	switch {
	case ix.index == nil:
		return domain.ErrVectorIndexUnavailable
	case ix.embedder == nil:
		return domain.ErrEmbeddingUnavailable
	case ix.splitter == nil:
		return errors.New("text splitter not configured")
	}
	return nil
}

// placeholderVector is a unit vector. Hosted indexes reject all-zero vectors.
func placeholderVector(dims int) []float32 {
	v := make([]float32, dims)
	if dims > 0 {
		v[0] = 1
	}
	return v
}
