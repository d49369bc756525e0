package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/docpal/docpal/ollama"
)

type ollamaEmbedder struct {
	api       *ollama.Client
	model     string
	dimension int
}

func NewOllamaEmbedder(opts Options) Embedder {
	return &ollamaEmbedder{
		api:       ollama.New(opts.OllamaHost, 30*time.Second),
		model:     opts.Model,
		dimension: opts.Dimension,
	}
}

// Embed calls the embeddings endpoint once per text; Ollama has no batch API.
func (e *ollamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.api.Embed(ctx, e.model, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		if err := checkDimension("ollama", e.dimension, vec); err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}
