package llm

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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func completionHandler(t *testing.T, failures int, answer string, got *[]chatMessage) (http.HandlerFunc, *int32) {
	t.Helper()
	var calls int32
	return func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var req struct {
			Messages []chatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if got != nil {
			*got = req.Messages
		}
		if int(n) <= failures {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": answer}},
			},
		})
	}, &calls
}

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	t.Setenv("TEST_LLM_KEY", "test-key")
	c, err := NewClient(Config{
		BaseURL:    baseURL,
		APIKeyEnv:  "TEST_LLM_KEY",
		Model:      "test-model",
		MaxRetries: maxRetries,
	})
	require.NoError(t, err)
	return c
}

func TestCompleteSendsThreePartPrompt(t *testing.T) {
	var got []chatMessage
	handler, _ := completionHandler(t, 0, "generated answer", &got)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	answer, err := c.Complete(context.Background(), "persona", "question", "doc text")
	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)

	require.Len(t, got, 3)
	assert.Equal(t, chatMessage{Role: "system", Content: "persona"}, got[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "question"}, got[1])
	assert.Equal(t, chatMessage{Role: "system", Content: "Context:\ndoc text"}, got[2])
}

func TestCompleteRetriesTransientFailure(t *testing.T) {
	handler, calls := completionHandler(t, 1, "eventually", nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	answer, err := c.Complete(context.Background(), "s", "u", "")
	require.NoError(t, err)
	assert.Equal(t, "eventually", answer)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCompleteExhaustsRetries(t *testing.T) {
	handler, calls := completionHandler(t, 100, "", nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	_, err := c.Complete(context.Background(), "s", "u", "")
	require.Error(t, err)
	var gerr *domain.GenerationError
	assert.ErrorAs(t, err, &gerr)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls), "one attempt plus two retries")
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_LLM_KEY"})
	assert.Error(t, err)
}
