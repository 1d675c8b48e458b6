// Package memory provides a process-local VectorIndex for tests and dry runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
// Queries rank by cosine similarity over a linear scan.
type Index struct {
	mu         sync.RWMutex
	namespaces map[domain.Namespace]map[string]driven.Vector
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		namespaces: make(map[domain.Namespace]map[string]driven.Vector),
	}
}

// Upsert inserts or replaces vectors by ID.
func (x *Index) Upsert(_ context.Context, ns domain.Namespace, vectors []driven.Vector) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	records, ok := x.namespaces[ns]
	if !ok {
		records = make(map[string]driven.Vector)
		x.namespaces[ns] = records
	}
	for _, v := range vectors {
		if v.ID == "" {
			return domain.ErrInvalidInput
		}
		v.Values = append([]float32(nil), v.Values...)
		records[v.ID] = v
	}
	return nil
}

// Query returns up to TopK records matching the filter, best first.
func (x *Index) Query(_ context.Context, ns domain.Namespace, req driven.QueryRequest) ([]driven.VectorMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []driven.VectorMatch
	for id, v := range x.namespaces[ns] {
		if !req.Filter.Matches(v.Metadata) {
			continue
		}
		matches = append(matches, driven.VectorMatch{
			ID:       id,
			Score:    cosine(req.Vector, v.Values),
			Metadata: v.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if req.TopK > 0 && len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}
	return matches, nil
}

// Update changes metadata on one record.
func (x *Index) Update(_ context.Context, ns domain.Namespace, id string, patch driven.MetadataPatch) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	v, ok := x.namespaces[ns][id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.IsSelected != nil {
		v.Metadata.IsSelected = *patch.IsSelected
	}
	x.namespaces[ns][id] = v
	return nil
}

// Delete removes records by ID.
func (x *Index) Delete(_ context.Context, ns domain.Namespace, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		delete(x.namespaces[ns], id)
	}
	return nil
}

// Fetch returns the records that exist among ids.
func (x *Index) Fetch(_ context.Context, ns domain.Namespace, ids []string) (map[string]driven.Vector, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	result := make(map[string]driven.Vector, len(ids))
	for _, id := range ids {
		if v, ok := x.namespaces[ns][id]; ok {
			result[id] = v
		}
	}
	return result, nil
}

// Count returns the number of records in a namespace.
func (x *Index) Count(ns domain.Namespace) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.namespaces[ns])
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
