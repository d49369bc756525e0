package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{Message: ChatMessage{Role: "assistant", Content: "hello back"}})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	reply, err := c.Chat(context.Background(), "llama3", []ChatMessage{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply != "hello back" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "llama3" || got.Stream {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Error: "model not found"})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Chat(context.Background(), "missing", nil)
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error surfaced, got %v", err)
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float64{0.5, -1.25}})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	vec, err := c.Embed(context.Background(), "nomic-embed-text", "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != -1.25 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

func TestErrorStatusReportedBeforeDecode(t *testing.T) {
	// The body is not JSON; a decode-first client would report a parse
	// failure instead of the server's message.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model is overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Embed(context.Background(), "m", "text")
	if err == nil || !strings.Contains(err.Error(), "model is overloaded") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestErrorStatusWithEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Chat(context.Background(), "m", nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNewNormalizesHost(t *testing.T) {
	c := New("http://example.com/", time.Second)
	if c.host != "http://example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.host)
	}

	c = New("", time.Second)
	if c.host != defaultHost {
		t.Fatalf("expected default host, got %q", c.host)
	}
}
