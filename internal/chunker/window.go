package chunker

import (
	"strconv"
	"strings"
	"unicode"

	"docchat/internal/domain"
)

// WindowChunker splits document text into overlapping rune windows. A chunk
// never exceeds the configured size; its end is pulled back to the nearest
// natural boundary (paragraph, newline, sentence, word gap) when one exists
// past the window midpoint. The next chunk starts exactly `overlap` runes
// before the previous end, so trimming the overlap reconstructs the source.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker with the given window size and overlap
// in runes. Invalid values fall back to 1000/200.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap*2 >= size {
		overlap = size / 5
	}
	return &WindowChunker{size: size, overlap: overlap}
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Text) == "" {
		return nil, nil
	}
	runes := []rune(document.Text)
	var chunks []domain.Chunk
	start := 0
	idx := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakpoint(runes, start, end)
		}
		chunks = append(chunks, domain.Chunk{
			ID:         document.ID + ":" + strconv.Itoa(idx),
			DocumentID: document.ID,
			Text:       string(runes[start:end]),
			Index:      idx,
			Start:      start,
			End:        end,
			Metadata:   chunkMetadata(document, idx),
		})
		if end == len(runes) {
			break
		}
		start = end - c.overlap
		idx++
	}
	return chunks, nil
}

func chunkMetadata(document domain.Document, idx int) map[string]string {
	m := make(map[string]string, len(document.Metadata)+1)
	for k, v := range document.Metadata {
		m[k] = v
	}
	m["chunk"] = strconv.Itoa(idx)
	return m
}

// breakpoint finds the best cut position in (mid, hard], trying boundary
// kinds from strongest to weakest. A hard cut only happens when the back
// half of the window holds no boundary at all.
func breakpoint(runes []rune, start, hard int) int {
	mid := start + (hard-start)/2
	boundaries := []func([]rune, int) bool{isParagraphEnd, isLineEnd, isSentenceEnd, isWordGap}
	for _, boundary := range boundaries {
		for i := hard; i > mid; i-- {
			if boundary(runes, i) {
				return i
			}
		}
	}
	return hard
}

// Cut positions sit after the boundary rune, so separators stay attached to
// the chunk they terminate.

func isParagraphEnd(runes []rune, i int) bool {
	return i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n'
}

func isLineEnd(runes []rune, i int) bool {
	return i >= 1 && runes[i-1] == '\n'
}

func isSentenceEnd(runes []rune, i int) bool {
	if i < 2 || i >= len(runes) {
		return false
	}
	r := runes[i-1]
	if r != '.' && r != '!' && r != '?' {
		return false
	}
	return unicode.IsSpace(runes[i])
}

func isWordGap(runes []rune, i int) bool {
	return i >= 1 && unicode.IsSpace(runes[i-1])
}
