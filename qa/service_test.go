package qa

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/docpal/docpal/ingestion"
	"github.com/docpal/docpal/llm"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		// Deterministic toy embedding: byte sums bucketed by position, so
		// texts sharing words land near each other.
		vec := make([]float32, 8)
		for j, ch := range []byte(strings.ToLower(text)) {
			vec[j%8] += float32(ch)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type stubLLM struct {
	answer     string
	err        error
	lastPrompt string
}

func (s *stubLLM) Generate(_ context.Context, messages []llm.Message) (string, error) {
	if len(messages) > 0 {
		s.lastPrompt = messages[len(messages)-1].Content
	}
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type countingStore struct {
	VectorStore
	deletes int
	lastDoc string
}

func (c *countingStore) Delete(ctx context.Context, docID string) error {
	c.deletes++
	c.lastDoc = docID
	return c.VectorStore.Delete(ctx, docID)
}

func testRegistry(t *testing.T) *ingestion.Registry {
	t.Helper()
	return ingestion.NewRegistry(ingestion.DefaultBackends(""), log.New(io.Discard, "", 0))
}

func TestAskAnswersFromDocument(t *testing.T) {
	store := &countingStore{VectorStore: NewMemoryStore()}
	model := &stubLLM{answer: "The warranty lasts two years."}
	svc := NewService(testRegistry(t), store, &stubEmbedder{}, model, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("warranty.txt", []byte("The warranty lasts two years.\nReturns are accepted within 30 days."))
	answer, err := svc.Ask(context.Background(), "How long is the warranty?", blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer.Text != "The warranty lasts two years." {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
	if len(answer.Sources) == 0 {
		t.Fatal("expected retrieved sources")
	}
	if answer.Rouge.F1 <= 0 {
		t.Fatalf("expected positive rouge score, got %+v", answer.Rouge)
	}
	if !strings.Contains(model.lastPrompt, "warranty") {
		t.Fatalf("expected document content in prompt, got %q", model.lastPrompt)
	}
}

func TestAskCleansUpIndexOnSuccess(t *testing.T) {
	store := &countingStore{VectorStore: NewMemoryStore()}
	svc := NewService(testRegistry(t), store, &stubEmbedder{}, &stubLLM{answer: "ok"}, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("note.txt", []byte("Some document text."))
	if _, err := svc.Ask(context.Background(), "What does it say?", blob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.deletes != 1 {
		t.Fatalf("expected one cleanup delete, got %d", store.deletes)
	}
	chunks, err := store.Search(context.Background(), store.lastDoc, []float32{1, 0, 0, 0, 0, 0, 0, 0}, 4)
	if err == nil && len(chunks) > 0 {
		t.Fatalf("expected index removed after answering, found %d chunks", len(chunks))
	}
}

func TestAskCleansUpIndexOnLLMFailure(t *testing.T) {
	store := &countingStore{VectorStore: NewMemoryStore()}
	svc := NewService(testRegistry(t), store, &stubEmbedder{}, &stubLLM{err: errors.New("model unavailable")}, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("note.txt", []byte("Some document text."))
	_, err := svc.Ask(context.Background(), "What does it say?", blob)
	if err == nil {
		t.Fatal("expected error from llm failure")
	}
	if store.deletes != 1 {
		t.Fatalf("expected cleanup delete despite failure, got %d", store.deletes)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewService(testRegistry(t), NewMemoryStore(), &stubEmbedder{}, &stubLLM{answer: "ok"}, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("note.txt", []byte("content"))
	if _, err := svc.Ask(context.Background(), "   ", blob); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestAskReportsExtractionFailure(t *testing.T) {
	store := &countingStore{VectorStore: NewMemoryStore()}
	svc := NewService(testRegistry(t), store, &stubEmbedder{}, &stubLLM{answer: "ok"}, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("archive.zip", []byte("binary"))
	_, err := svc.Ask(context.Background(), "What is inside?", blob)
	if !errors.Is(err, ingestion.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if store.deletes != 0 {
		t.Fatal("nothing was indexed, nothing should be deleted")
	}
}

func TestAskFailsWithoutEmbedder(t *testing.T) {
	svc := NewService(testRegistry(t), NewMemoryStore(), nil, &stubLLM{answer: "ok"}, log.New(io.Discard, "", 0))

	blob := ingestion.NewBlob("note.txt", []byte("content"))
	if _, err := svc.Ask(context.Background(), "Anything?", blob); err == nil {
		t.Fatal("expected error when embedder is missing")
	}
}
