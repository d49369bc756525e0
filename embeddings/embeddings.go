// Package embeddings turns text chunks into vectors for similarity search.
// Every provider enforces the configured dimension, which must agree with the
// pgvector column width the schema was created with.
package embeddings

import (
	"context"
	"fmt"

	"github.com/docpal/docpal/config"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Provider:      cfg.Embeddings.Provider,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}

// checkDimension rejects vectors whose width differs from the configured
// dimension. A zero configured dimension disables the check.
func checkDimension(provider string, want int, vec []float32) error {
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%s embedding dimension mismatch: expected %d, got %d", provider, want, len(vec))
	}
	return nil
}
