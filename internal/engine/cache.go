package engine

import "sync"

// EmbeddingCache stores embeddings keyed by canonical text (ComposeDream /
// ComposeDejavu output). It is an optional collaborator: the engine and
// services are correct without one, a cache only avoids redundant provider
// calls across repeated queries.
type EmbeddingCache interface {
	Get(text string) ([]float32, bool)
	Put(text string, embedding []float32)
}

// MemoryCache is a concurrency-safe in-memory EmbeddingCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache creates an empty in-memory embedding cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

// Get returns the cached embedding for text, if any.
func (c *MemoryCache) Get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	emb, ok := c.entries[text]
	return emb, ok
}

// Put stores an embedding. Empty embeddings are not cached: an empty
// vector means "provider unavailable", which should be retried next call.
func (c *MemoryCache) Put(text string, embedding []float32) {
	if len(embedding) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[text] = embedding
}

// Len returns the number of cached texts.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
