package domain

import "context"

// Loader reads a file into one or more documents.
type Loader interface {
	Load(path string) ([]Document, error)
	Supported(name string) bool
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore holds (chunk, vector) pairs and answers nearest-neighbor
// queries. Upsert with empty input is a no-op; Search on an empty store
// returns an empty slice, never an error.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)
	Count() int
}

// ChatModel generates an answer from a structured three-part prompt.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt, contextBlock string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
