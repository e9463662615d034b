// Package chromem adapts the chromem-go in-memory vector database to the
// VectorStore interface.
package chromem

import (
	"context"
	"strconv"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"docchat/internal/domain"
)

// Store wraps a single cosine-space chromem collection. Vectors are computed
// upstream and passed through, so the collection carries no embedding
// function of its own. Writes are serialized; chromem handles concurrent
// reads.
type Store struct {
	mu         sync.Mutex
	collection *chromemgo.Collection
}

// New creates a fresh in-memory collection. Nothing is persisted; the index
// lives and dies with the process.
func New() (*Store, error) {
	db := chromemgo.NewDB()
	collection, err := db.CreateCollection("documents", map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, err
	}
	return &Store{collection: collection}, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		contents[i] = c.Text
		m := make(map[string]string, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			m[k] = v
		}
		m["document_id"] = c.DocumentID
		m["chunk"] = strconv.Itoa(c.Index)
		metadatas[i] = m
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Add(ctx, ids, vectors, metadatas, contents)
}

// Search queries by embedding. chromem rejects queries asking for more
// results than the collection holds, so topK is clamped first and an empty
// collection short-circuits to an empty result.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, err
	}
	scored := make([]domain.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk := domain.Chunk{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
		}
		if r.Metadata != nil {
			chunk.DocumentID = r.Metadata["document_id"]
			if idx, err := strconv.Atoi(r.Metadata["chunk"]); err == nil {
				chunk.Index = idx
			}
		}
		scored = append(scored, domain.ScoredChunk{Chunk: chunk, Score: float64(r.Similarity)})
	}
	return scored, nil
}

func (s *Store) Count() int { return s.collection.Count() }
