package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptyText(t *testing.T) {
	s := NewFrequencySummarizer()

	out, err := s.Summarize("", 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummarizeShortTextKeepsEverything(t *testing.T) {
	s := NewFrequencySummarizer()

	out, err := s.Summarize("First sentence. Second sentence.", 5)
	require.NoError(t, err)
	assert.Equal(t, "First sentence. Second sentence.", out)
}

func TestSummarizeLimitsSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Filler sentence number something. ")
	}
	b.WriteString("Databases databases databases matter most here.")

	out, err := s.Summarize(b.String(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "."))
}

func TestSummarizePreservesOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Alpha topic comes before everything. Filler words pad things out plainly. Zulu topic comes after everything. More filler words pad again plainly. Alpha and Zulu topic words repeat, Alpha Zulu topic."

	out, err := s.Summarize(text, 2)
	require.NoError(t, err)

	first := strings.Index(out, "Alpha")
	last := strings.Index(out, "Zulu")
	if first >= 0 && last >= 0 {
		assert.Less(t, first, last)
	}
}
