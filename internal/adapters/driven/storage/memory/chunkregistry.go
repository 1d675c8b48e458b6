package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure ChunkRegistry implements the interface.
var _ driven.ChunkRegistry = (*ChunkRegistry)(nil)

type registryKey struct {
	ns     domain.Namespace
	baseID string
}

// ChunkRegistry is an in-memory implementation of driven.ChunkRegistry.
type ChunkRegistry struct {
	mu      sync.RWMutex
	entries map[registryKey][]string
}

// NewChunkRegistry creates a new in-memory chunk registry.
func NewChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		entries: make(map[registryKey][]string),
	}
}

// Put replaces the chunk IDs recorded for a document.
func (r *ChunkRegistry) Put(_ context.Context, ns domain.Namespace, baseID string, chunkIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[registryKey{ns, baseID}] = append([]string(nil), chunkIDs...)
	return nil
}

// Get returns the recorded chunk IDs in index order.
func (r *ChunkRegistry) Get(_ context.Context, ns domain.Namespace, baseID string) ([]string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, ok := r.entries[registryKey{ns, baseID}]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), ids...), true, nil
}

// Remove forgets a document.
func (r *ChunkRegistry) Remove(_ context.Context, ns domain.Namespace, baseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, registryKey{ns, baseID})
	return nil
}
