// Package memory is a brute-force in-memory vector store using cosine
// similarity over L2-normalized vectors.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"docchat/internal/domain"
)

// Store keeps chunks and vectors in append-only slices. Reads take a shared
// lock, writes an exclusive one, so search stays safe while a batch insert
// runs. The vector dimension is fixed by the first upsert.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
}

func New() *Store { return &Store{} }

// Upsert appends the batch. Empty input is a no-op; a dimension mismatch
// rejects the whole batch before anything is stored.
func (s *Store) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dim := s.dimension
	if dim == 0 {
		dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != dim {
			return errors.New("vector dimension mismatch")
		}
	}
	s.dimension = dim
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK most similar chunks, fewer when the store holds
// fewer entries, and an empty result on an empty store. Ties keep insertion
// order.
func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 || topK <= 0 {
		return nil, nil
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = dot(s.vectors[i], vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.ScoredChunk, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.ScoredChunk{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Count returns the number of indexed entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
