package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
	ErrUnsupportedModel  = errors.New("unsupported provider")
)

// Embedder generates fixed-dimension embedding vectors. The dimension must
// equal the vector index's configured dimension.
type Embedder interface {
	// Embed generates the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector dimension this provider produces.
	Dimension() int

	// Model returns the model name vectors are computed under.
	Model() string
}

// Cache is an in-process LRU memo of vectors by content hash. It sits in
// front of a provider to absorb repeated texts within one process; the
// durable reuse decision lives in the ingestion cache, not here.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a cache with LRU eviction. maxLen <= 0 selects 10k.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of the cached vector so caller mutations cannot poison
// the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector under the given content hash.
func (c *Cache) Set(hash string, vec []float32) {
	c.cache.Add(hash, vec)
}

// Len returns the current cache size.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// ComputeHash computes the SHA-256 content hash used as the cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
