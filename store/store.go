// Package store keeps the extracted text of uploaded documents for the
// lifetime of the process. Handlers receive it explicitly; nothing here is a
// package-level global.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded file's extracted text plus metadata.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Text       string    `json:"-"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Store is an in-memory uploaded-document registry, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func New() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Add registers extracted text under a fresh id and returns the document.
func (s *Store) Add(name string, size int64, text string) Document {
	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		Size:       size,
		Text:       text,
		Chars:      len(text),
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()
	return doc
}

// Get returns the document for id.
func (s *Store) Get(id string) (Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

// List returns all documents ordered by upload time.
func (s *Store) List() []Document {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
	return docs
}

// Clear removes every document and reports how many were dropped.
func (s *Store) Clear() int {
	s.mu.Lock()
	n := len(s.docs)
	s.docs = make(map[string]Document)
	s.mu.Unlock()
	return n
}
