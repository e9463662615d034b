package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func chunk(id string) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: "doc", Text: "text " + id}
}

func TestSearchEmptyStore(t *testing.T) {
	s := New()

	results, err := s.Search(context.Background(), []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpsertEmptyBatchIsNoOp(t *testing.T) {
	s := New()

	require.NoError(t, s.Upsert(context.Background(), nil, nil))
	assert.Equal(t, 0, s.Count())
}

func TestUpsertIsAdditive(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a")}, [][]float32{{1, 0}}))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("b")}, [][]float32{{0, 1}}))
	assert.Equal(t, 2, s.Count())

	results, err := s.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Chunk.ID)
}

func TestUpsertLengthMismatch(t *testing.T) {
	s := New()

	err := s.Upsert(context.Background(), []domain.Chunk{chunk("a")}, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, s.Count())
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a")}, [][]float32{{1, 0, 0}}))
	err := s.Upsert(ctx, []domain.Chunk{chunk("b")}, [][]float32{{1, 0}})
	assert.Error(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	s := New()
	ctx := context.Background()

	chunks := []domain.Chunk{chunk("far"), chunk("near"), chunk("mid")}
	vectors := [][]float32{{0, 1}, {1, 0}, {0.7, 0.7}}
	require.NoError(t, s.Upsert(ctx, chunks, vectors))

	results, err := s.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "near", results[0].Chunk.ID)
	assert.Equal(t, "mid", results[1].Chunk.ID)
	assert.Equal(t, "far", results[2].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	chunks := []domain.Chunk{chunk("first"), chunk("second"), chunk("third")}
	same := []float32{1, 0}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float32{same, same, same}))

	results, err := s.Search(ctx, same, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestSearchClampsTopK(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a"), chunk("b")}, [][]float32{{1, 0}, {0, 1}}))

	results, err := s.Search(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
