package domain

// Document is an immutable unit of ingested content. Metadata carries at
// least the source filename under "source".
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Chunk is a bounded slice of a document's text, the unit of retrieval.
// Start and End are rune offsets into the source text; consecutive chunks
// of one document overlap by a fixed number of runes.
type Chunk struct {
	ID         string
	DocumentID string
	Text       string
	Index      int
	Start      int
	End        int
	Metadata   map[string]string
}

// ScoredChunk is a retrieval hit with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Role tags a conversation message as coming from the user or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Source returns the originating filename recorded in the metadata, if any.
func (d Document) Source() string { return d.Metadata["source"] }
