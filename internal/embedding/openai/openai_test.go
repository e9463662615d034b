package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func embeddingsServer(t *testing.T, calls *int32, fail bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if fail {
			http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data := make([]map[string]any, len(req.Input))
		for i, text := range req.Input {
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(text)), 1},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
}

func newTestClient(t *testing.T, baseURL string, batchSize int) *Client {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "test-key")
	c, err := NewClient(Config{
		BaseURL:   baseURL,
		APIKeyEnv: "TEST_EMBED_KEY",
		Model:     "test-embedding-model",
		BatchSize: batchSize,
	})
	require.NoError(t, err)
	return c
}

func TestEmbedBatchSplitsIntoBatches(t *testing.T) {
	var calls int32
	srv := embeddingsServer(t, &calls, false)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	vectors, err := c.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{5, 1}, vectors[2])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "three texts at batch size two need two calls")
}

func TestEmbedWrapsAPIFailure(t *testing.T) {
	var calls int32
	srv := embeddingsServer(t, &calls, true)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	_, err := c.Embed(context.Background(), "text")
	require.Error(t, err)
	var eerr *domain.EmbeddingError
	assert.ErrorAs(t, err, &eerr)
}

func TestNameIsModel(t *testing.T) {
	srv := embeddingsServer(t, new(int32), false)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	assert.Equal(t, "test-embedding-model", c.Name())
}
