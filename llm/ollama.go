package llm

import (
	"context"
	"time"

	"github.com/docpal/docpal/ollama"
)

type ollamaClient struct {
	api   *ollama.Client
	model string
}

func NewOllamaClient(opts Options) Client {
	return &ollamaClient{
		api:   ollama.New(opts.OllamaHost, 60*time.Second),
		model: opts.Model,
	}
}

func (c *ollamaClient) Generate(ctx context.Context, messages []Message) (string, error) {
	converted := make([]ollama.ChatMessage, len(messages))
	for i, m := range messages {
		converted[i] = ollama.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return c.api.Chat(ctx, c.model, converted)
}
