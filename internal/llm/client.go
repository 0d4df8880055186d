package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
)

// Completer is the single capability the pipeline needs from a language
// model: one system+user prompt in, one text completion out.
type Completer interface {
	Complete(ctx context.Context, system, user string, timeout time.Duration) (string, error)
}

// Client calls a chat-completion endpoint with bearer-token auth.
type Client struct {
	http        *resty.Client
	apiURL      string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

var _ Completer = (*Client)(nil)

// NewClient creates a chat-completion client from static configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:        resty.New(),
		apiURL:      cfg.LLMAPIURL,
		apiKey:      cfg.LLMAPIKey,
		model:       cfg.LLMModel,
		maxTokens:   cfg.LLMMaxTokens,
		temperature: cfg.LLMTemperature,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion bounded by the given per-call timeout.
func (c *Client) Complete(ctx context.Context, system, user string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.http.R().
		SetContext(callCtx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(req).
		Post(c.apiURL)

	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse model response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
