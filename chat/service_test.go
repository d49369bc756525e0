package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/docpal/docpal/llm"
)

type stubLLM struct {
	answer   string
	err      error
	messages []llm.Message
}

func (s *stubLLM) Generate(_ context.Context, messages []llm.Message) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func testService(model llm.Client) *Service {
	return NewService(model, log.New(io.Discard, "", 0))
}

func TestSendExtendsHistory(t *testing.T) {
	model := &stubLLM{answer: "Hi there."}
	svc := testService(model)

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleAssistant, Content: "earlier answer"},
	}
	answer, updated, err := svc.Send(context.Background(), history, "Hello", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Hi there." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(updated) != len(history)+2 {
		t.Fatalf("expected history extended by 2, got %d", len(updated))
	}
	if updated[len(updated)-2].Content != "Hello" || updated[len(updated)-2].Role != llm.RoleUser {
		t.Fatalf("unexpected user turn %+v", updated[len(updated)-2])
	}
	if updated[len(updated)-1].Content != "Hi there." || updated[len(updated)-1].Role != llm.RoleAssistant {
		t.Fatalf("unexpected assistant turn %+v", updated[len(updated)-1])
	}
}

func TestSendIncludesSystemPromptAndHistory(t *testing.T) {
	model := &stubLLM{answer: "ok"}
	svc := testService(model)

	history := []llm.Message{{Role: llm.RoleUser, Content: "old turn"}}
	if _, _, err := svc.Send(context.Background(), history, "new turn", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(model.messages) != 3 {
		t.Fatalf("expected system + history + user, got %d messages", len(model.messages))
	}
	if model.messages[0].Role != llm.RoleSystem {
		t.Fatalf("expected system prompt first, got %+v", model.messages[0])
	}
	if model.messages[1].Content != "old turn" {
		t.Fatalf("expected prior turn preserved, got %+v", model.messages[1])
	}
}

func TestSendFileContextInPromptNotHistory(t *testing.T) {
	model := &stubLLM{answer: "The file says hello."}
	svc := testService(model)

	_, updated, err := svc.Send(context.Background(), nil, "Summarize it", "hello from the file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := model.messages[len(model.messages)-1].Content
	if !strings.Contains(prompt, "hello from the file") {
		t.Fatalf("expected file context in prompt, got %q", prompt)
	}
	if updated[0].Content != "Summarize it" {
		t.Fatalf("stored turn should omit file context, got %q", updated[0].Content)
	}
}

func TestSendKeepsHistoryOnFailure(t *testing.T) {
	model := &stubLLM{err: errors.New("model unavailable")}
	svc := testService(model)

	history := []llm.Message{{Role: llm.RoleUser, Content: "earlier"}}
	_, updated, err := svc.Send(context.Background(), history, "Hello", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(updated) != len(history) {
		t.Fatalf("expected history unchanged on failure, got %d turns", len(updated))
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc := testService(&stubLLM{answer: "ok"})

	if _, _, err := svc.Send(context.Background(), nil, "   ", ""); err == nil {
		t.Fatal("expected error for empty message")
	}
}
