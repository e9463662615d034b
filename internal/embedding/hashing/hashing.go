// Package hashing is a deterministic, dependency-free embedder built on
// token feature hashing. It needs no remote calls and no corpus pass, so it
// serves offline runs and tests.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"

	"docchat/internal/text"
)

// Embedder hashes each token into one of dimension buckets and L2-normalizes
// the resulting counts. Identical text always yields the identical vector.
type Embedder struct {
	dimension int
}

// New creates an embedder with the given vector dimension (default 256).
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string { return "hashing-" + strconv.Itoa(e.dimension) }

func (e *Embedder) Embed(_ context.Context, s string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	for _, tok := range text.Tokens(s) {
		vec[e.bucket(tok)]++
	}
	normalize(vec)
	return vec, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *Embedder) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
