// Package chat drives free-form conversations with the configured LLM,
// optionally injecting uploaded files' text as context.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/docpal/docpal/llm"
)

type Service struct {
	llm    llm.Client
	logger *log.Logger
}

func NewService(llmClient llm.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		llm:    llmClient,
		logger: logger,
	}
}

// Send asks the model for a reply to message, given the prior conversation
// turns. When fileContext is non-empty it is appended to the prompt but not
// to the stored turn. The returned history extends the input with the new
// user and assistant turns; on failure the input history comes back
// unchanged, as if the turn never happened.
func (s *Service) Send(ctx context.Context, history []llm.Message, message, fileContext string) (string, []llm.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", history, fmt.Errorf("message cannot be empty")
	}
	if s.llm == nil {
		return "", history, fmt.Errorf("llm client is not configured")
	}

	prompt := message
	if strings.TrimSpace(fileContext) != "" {
		prompt = message + "\n\nUploaded file content:\n" + fileContext
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt()})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	answer, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return "", history, fmt.Errorf("llm generate: %w", err)
	}

	answer = strings.TrimSpace(answer)

	updated := make([]llm.Message, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		llm.Message{Role: llm.RoleUser, Content: message},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)

	return answer, updated, nil
}

func systemPrompt() string {
	return "You are a helpful AI assistant that can analyze and discuss uploaded files. " +
		"When file content is provided, reference it directly in your answers and quote the relevant parts. " +
		"Be helpful and informative, ask clarifying questions when needed, and keep responses concise but thorough. " +
		"If the user asks about files but no file content is provided, let them know you don't see any uploaded files."
}
