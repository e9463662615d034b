package domain

import "fmt"

// LoadError reports an unreadable or unsupported document. Batch ingestion
// logs it, skips the file and continues.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// EmbeddingError reports a failed remote embedding call. It aborts the
// current ingestion batch; previously indexed entries are unaffected.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// RetrievalError reports a failed similarity search. The pipeline treats it
// as "no context available", not as a fatal turn error.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval: %v", e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError reports an LLM call that failed after its retries were
// exhausted. The pipeline falls back to a fixed answer and still appends a
// turn so the history stays consistent.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }
