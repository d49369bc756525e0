package qa

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Chunk is one retrieved piece of an indexed document.
type Chunk struct {
	DocumentID string  `json:"documentId"`
	Index      int     `json:"index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// VectorStore indexes a document's chunks for one question's lifetime and
// answers similarity queries against them.
type VectorStore interface {
	Upsert(ctx context.Context, docID string, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, docID string, vector []float32, limit int) ([]Chunk, error)
	Delete(ctx context.Context, docID string) error
}

type memoryEntry struct {
	content string
	vector  []float32
}

// MemoryStore is an in-process vector store backed by brute-force cosine
// similarity. It serves deployments without Postgres and the tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]memoryEntry)}
}

func (s *MemoryStore) Upsert(_ context.Context, docID string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	entries := make([]memoryEntry, len(chunks))
	for i := range chunks {
		entries[i] = memoryEntry{content: chunks[i], vector: vectors[i]}
	}

	s.mu.Lock()
	s.docs[docID] = entries
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Search(_ context.Context, docID string, vector []float32, limit int) ([]Chunk, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	entries, ok := s.docs[docID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("document %s is not indexed", docID)
	}

	results := make([]Chunk, 0, len(entries))
	for i, entry := range entries {
		results = append(results, Chunk{
			DocumentID: docID,
			Index:      i,
			Content:    entry.content,
			Score:      cosineSimilarity(vector, entry.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Delete(_ context.Context, docID string) error {
	s.mu.Lock()
	delete(s.docs, docID)
	s.mu.Unlock()
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ VectorStore = (*MemoryStore)(nil)
