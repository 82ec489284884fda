// Package ai calls an OpenAI-compatible chat completions API over HTTP.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned once every attempt against the model API has
// failed. Handlers map it to 503 so the visitor sees a retryable error
// instead of a crash.
var ErrUnavailable = errors.New("model api unavailable")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	http           *http.Client
	baseURL        string
	apiKey         string
	model          string
	maxAttempts    int
	backoff        time.Duration
	attemptTimeout time.Duration
}

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 15 * time.Second
	}
	return &Client{
		http:           &http.Client{},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		maxAttempts:    cfg.MaxAttempts,
		backoff:        cfg.Backoff,
		attemptTimeout: cfg.AttemptTimeout,
	}
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the conversation and returns the assistant's reply. Each
// attempt gets its own timeout; transient failures (network errors, 429, 5xx)
// are retried with a fixed backoff.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		reply, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) attempt(ctx context.Context, body []byte) (string, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("model api status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("model api status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("invalid model api response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, errors.New(parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("model api returned no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}
