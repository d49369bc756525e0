package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, opts Options) (Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiClient{
		client: client,
		model:  client.GenerativeModel(opts.Model),
	}, nil
}

func (c *geminiClient) Generate(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	var system string
	history := make([]*genai.Content, 0, len(messages))
	prompt := ""

	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = msg.Content
		case RoleUser:
			if i == len(messages)-1 {
				prompt = msg.Content
				continue
			}
			history = append(history, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case RoleAssistant:
			history = append(history, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		}
	}

	if prompt == "" {
		return "", fmt.Errorf("conversation must end with a user message")
	}
	if system != "" {
		prompt = system + "\n\nUser: " + prompt
	}

	session := c.model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String(), nil
}

// classifyGeminiError turns the common vendor failures into messages a user
// of the chat UI can act on.
func classifyGeminiError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return fmt.Errorf("invalid or expired API key, check GEMINI_API_KEY: %w", err)
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return fmt.Errorf("api quota exceeded, try again later: %w", err)
	case strings.Contains(msg, "blocked"):
		return fmt.Errorf("message was blocked by safety filters, rephrase and retry: %w", err)
	default:
		return fmt.Errorf("gemini request failed: %w", err)
	}
}
