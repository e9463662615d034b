package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records how many texts actually reached the backend.
type countingEmbedder struct {
	name     string
	embedded int
}

func (e *countingEmbedder) Name() string { return e.name }

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.embedded++
	return []float32{float32(len(text)), 1}, nil
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func TestCacheAvoidsRecomputation(t *testing.T) {
	inner := &countingEmbedder{name: "model-a"}
	c := NewCache(inner, NewMemoryStore())
	ctx := context.Background()

	first, err := c.Embed(ctx, "same text")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.embedded)
}

func TestCacheBatchForwardsOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{name: "model-a"}
	c := NewCache(inner, NewMemoryStore())
	ctx := context.Background()

	_, err := c.Embed(ctx, "cached")
	require.NoError(t, err)
	require.Equal(t, 1, inner.embedded)

	vectors, err := c.EmbedBatch(ctx, []string{"cached", "fresh one", "fresh two"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 3, inner.embedded, "only the two misses should hit the backend")
	for i, v := range vectors {
		assert.NotEmpty(t, v, "vector %d", i)
	}
}

func TestCacheKeysIncludeModelName(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := &countingEmbedder{name: "model-a"}
	b := &countingEmbedder{name: "model-b"}
	_, err := NewCache(a, store).Embed(ctx, "shared text")
	require.NoError(t, err)
	_, err = NewCache(b, store).Embed(ctx, "shared text")
	require.NoError(t, err)

	assert.Equal(t, 1, a.embedded)
	assert.Equal(t, 1, b.embedded, "a different model must not reuse another model's vector")
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("model:abc", []float32{0.25, 0.5}))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	vec, ok := second.Get("model:abc")
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, 0.5}, vec)

	_, ok = second.Get("model:missing")
	assert.False(t, ok)
}
