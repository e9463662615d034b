// Package retriever answers natural-language queries with the most similar
// indexed chunks.
package retriever

import (
	"context"

	"docchat/internal/domain"
)

// DefaultTopK matches the pipeline's retrieval width.
const DefaultTopK = 4

// Retriever embeds a query and searches the vector store.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
	topK     int
}

// New creates a retriever. topK <= 0 falls back to DefaultTopK.
func New(embedder domain.Embedder, store domain.VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Search returns up to k chunks ordered by similarity. An empty index is
// checked before touching the embedding API and yields an empty result.
// Any failure surfaces as a *domain.RetrievalError.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		k = r.topK
	}
	if r.store.Count() == 0 {
		return nil, nil
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}
	scored, err := r.store.Search(ctx, vector, k)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}
	return chunks, nil
}

// TopK returns the configured default retrieval width.
func (r *Retriever) TopK() int { return r.topK }
