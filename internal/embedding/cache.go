// Package embedding provides the content-addressed cache that fronts every
// embedder. Implementations live in the subpackages.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"docchat/internal/domain"
)

// Store persists cached vectors. Keys are opaque; implementations must be
// safe for concurrent use.
type Store interface {
	Get(key string) ([]float32, bool)
	Set(key string, vector []float32) error
}

// Cache is a read-through cache around an Embedder, keyed by the embedder
// name and the SHA-256 of the text. The same text under the same model
// reuses its cached vector instead of recomputing.
type Cache struct {
	inner domain.Embedder
	store Store
}

// NewCache wraps inner with the given backing store.
func NewCache(inner domain.Embedder, store Store) *Cache {
	return &Cache{inner: inner, store: store}
}

func (c *Cache) Name() string { return c.inner.Name() }

func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if vec, ok := c.store.Get(key); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(key, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch serves hits from the store and forwards only the misses to the
// wrapped embedder, as a single batch.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		if vec, ok := c.store.Get(c.key(t)); ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return vectors, nil
	}
	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		if err := c.store.Set(c.key(texts[i]), fresh[j]); err != nil {
			return nil, err
		}
		vectors[i] = fresh[j]
	}
	return vectors, nil
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Name() + ":" + hex.EncodeToString(sum[:])
}
