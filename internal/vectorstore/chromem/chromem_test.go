package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestSearchEmptyCollection(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	results, err := s.Search(context.Background(), []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpsertAndSearch(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Text: "about cats", Index: 0, Metadata: map[string]string{"source": "a.txt"}},
		{ID: "c2", DocumentID: "d1", Text: "about dogs", Index: 1, Metadata: map[string]string{"source": "a.txt"}},
	}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float32{{1, 0}, {0, 1}}))
	assert.Equal(t, 2, s.Count())

	results, err := s.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2, "topK beyond the collection size must be clamped")

	top := results[0].Chunk
	assert.Equal(t, "c1", top.ID)
	assert.Equal(t, "about cats", top.Text)
	assert.Equal(t, "d1", top.DocumentID)
	assert.Equal(t, 0, top.Index)
	assert.Equal(t, "a.txt", top.Metadata["source"])
}

func TestUpsertEmptyBatchIsNoOp(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.Upsert(context.Background(), nil, nil))
	assert.Equal(t, 0, s.Count())
}
