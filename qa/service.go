// Package qa answers ad-hoc questions against a single uploaded document via
// a chunk, embed, retrieve, and synthesize pipeline.
package qa

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/docpal/docpal/embeddings"
	"github.com/docpal/docpal/ingestion"
	"github.com/docpal/docpal/llm"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 200
	defaultTopK         = 4
)

type Service struct {
	registry *ingestion.Registry
	store    VectorStore
	embedder embeddings.Embedder
	llm      llm.Client
	logger   *log.Logger
}

type Answer struct {
	Text    string     `json:"answer"`
	Sources []Chunk    `json:"sources"`
	Rouge   RougeScore `json:"rouge"`
}

func NewService(registry *ingestion.Registry, store VectorStore, embedder embeddings.Embedder, llmClient llm.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		registry: registry,
		store:    store,
		embedder: embedder,
		llm:      llmClient,
		logger:   logger,
	}
}

// Ask extracts the blob's text, indexes it under a fresh document id, runs a
// similarity search for the question, and synthesizes an answer from the
// retrieved chunks. The question-scoped index is removed on every exit path.
func (s *Service) Ask(ctx context.Context, question string, blob ingestion.Blob) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("question cannot be empty")
	}
	if s.embedder == nil {
		return Answer{}, fmt.Errorf("embedder is not configured")
	}
	if s.store == nil {
		return Answer{}, fmt.Errorf("vector store is not configured")
	}
	if s.llm == nil {
		return Answer{}, fmt.Errorf("llm client is not configured")
	}

	text, err := s.registry.Extract(blob)
	if err != nil {
		return Answer{}, fmt.Errorf("extract document: %w", err)
	}

	chunks := SplitText(text, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		return Answer{}, fmt.Errorf("document produced no text to index")
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return Answer{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return Answer{}, fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(chunks), len(vectors))
	}

	docID := uuid.NewString()
	if err := s.store.Upsert(ctx, docID, chunks, vectors); err != nil {
		return Answer{}, fmt.Errorf("index chunks: %w", err)
	}
	defer func() {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), docID); delErr != nil {
			s.logger.Printf("cleanup question index %s: %v", docID, delErr)
		}
	}()

	questionVectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(questionVectors) == 0 {
		return Answer{}, fmt.Errorf("embedder returned no vectors")
	}

	sources, err := s.store.Search(ctx, docID, questionVectors[0], defaultTopK)
	if err != nil {
		return Answer{}, fmt.Errorf("vector search: %w", err)
	}
	if len(sources) == 0 {
		return Answer{}, fmt.Errorf("no relevant chunks found for the question")
	}

	contextText := joinSources(sources)

	answer, err := s.llm.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: answerPrompt()},
		{Role: llm.RoleUser, Content: formatQuestionPrompt(question, contextText)},
	})
	if err != nil {
		return Answer{}, fmt.Errorf("llm generate: %w", err)
	}

	answer = strings.TrimSpace(answer)

	return Answer{
		Text:    answer,
		Sources: sources,
		Rouge:   Rouge1(answer, contextText),
	}, nil
}

func joinSources(sources []Chunk) string {
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = src.Content
	}
	return strings.Join(parts, "\n\n")
}

func answerPrompt() string {
	return "You are a document question-answering assistant. Answer the question using only the supplied document excerpts. If the excerpts do not contain the answer, say so plainly instead of guessing."
}

func formatQuestionPrompt(question, context string) string {
	var sb strings.Builder
	sb.WriteString("Document excerpts:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(question)
	return sb.String()
}
