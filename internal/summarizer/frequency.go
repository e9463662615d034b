// Package summarizer produces the short corpus summary shown after ingest.
package summarizer

import (
	"math"
	"sort"
	"strings"

	"docchat/internal/text"
)

// FrequencySummarizer ranks sentences by normalized token frequency and
// keeps the top ones in their original order.
type FrequencySummarizer struct{}

func NewFrequencySummarizer() *FrequencySummarizer { return &FrequencySummarizer{} }

func (s *FrequencySummarizer) Summarize(input string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := text.Sentences(input)
	if len(sentences) == 0 {
		return "", nil
	}
	if len(sentences) <= maxSentences {
		return joinTrimmed(sentences), nil
	}

	freq := map[string]float64{}
	maxFreq := 0.0
	for _, sent := range sentences {
		for _, tok := range text.Tokens(sent) {
			freq[tok]++
			if freq[tok] > maxFreq {
				maxFreq = freq[tok]
			}
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		tokens := text.Tokens(sent)
		var sum float64
		for _, tok := range tokens {
			sum += freq[tok] / maxFreq
		}
		// Dampen the long-sentence advantage.
		if n := float64(len(tokens)); n > 0 {
			sum /= math.Sqrt(n)
		}
		scores[i] = scored{i, sum}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	picked := make([]string, len(selected))
	for i, idx := range selected {
		picked[i] = sentences[idx]
	}
	return joinTrimmed(picked), nil
}

func joinTrimmed(sentences []string) string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = strings.TrimSpace(s)
	}
	return strings.Join(out, " ")
}
