// Package ollama is a minimal client for the two Ollama endpoints this
// service uses: non-streaming chat completions and embeddings. The chat and
// embedding providers both go through it, so the HTTP handling lives in one
// place.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHost = "http://localhost:11434"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message ChatMessage `json:"message"`
	Error   string      `json:"error"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error"`
}

// Client talks to one Ollama host.
type Client struct {
	host string
	http *http.Client
}

func New(host string, timeout time.Duration) *Client {
	host = strings.TrimRight(host, "/")
	if host == "" {
		host = defaultHost
	}

	return &Client{
		host: host,
		http: &http.Client{Timeout: timeout},
	}
}

// Chat runs one non-streaming chat completion and returns the reply text.
func (c *Client) Chat(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/api/chat", chatRequest{Model: model, Messages: messages, Stream: false}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama chat error: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// Embed returns the embedding vector for one prompt. The endpoint takes a
// single prompt per call; batching is the caller's loop.
func (c *Client) Embed(ctx context.Context, model, prompt string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.post(ctx, "/api/embeddings", embeddingRequest{Model: model, Prompt: prompt}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama embedding error: %s", resp.Error)
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// post sends payload to path and decodes the JSON response into out. Error
// statuses are reported with the response body before any decode is tried.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call ollama %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr == nil && len(data) > 0 {
			return fmt.Errorf("ollama %s: %s", path, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("ollama %s returned status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ollama response: %w", err)
	}
	return nil
}
