// Package llm generates answers through an OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"docchat/internal/domain"
)

// Config configures the chat model. Defaults target Groq's OpenAI-compatible
// endpoint with a deterministic temperature and a small bounded retry.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}

// Client is the ChatModel implementation.
type Client struct {
	client     *goopenai.Client
	model      string
	maxTokens  int
	maxRetries int
}

// NewClient reads the API key from env and applies defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GROQ_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	clientCfg := goopenai.DefaultConfig(key)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Complete sends the three-part prompt: system persona, user question,
// context block. It retries transient failures up to MaxRetries times and
// wraps the final failure in a *domain.GenerationError.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt, contextBlock string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		// omitempty would drop an explicit 0, and the API default is 1.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
			{Role: goopenai.ChatMessageRoleSystem, Content: "Context:\n" + contextBlock},
		},
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &domain.GenerationError{Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = errors.New("chat completion returned no choices")
				continue
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
	}
	return "", &domain.GenerationError{Err: lastErr}
}
