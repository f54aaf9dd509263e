package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docchat/internal/rag/schema"
	olla "github.com/ollama/ollama/api"
)

var _ LLM = (*Ollama)(nil)

// Ollama generates replies through a local Ollama server.
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local server address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Generate sends the message sequence through the Ollama chat API and
// collects the single non-streamed response.
func (o *Ollama) Generate(ctx context.Context, messages []schema.Message) (string, error) {
	chatMessages := make([]olla.Message, len(messages))
	for i, m := range messages {
		chatMessages[i] = olla.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	var sb strings.Builder
	err := o.client.Chat(ctx, &olla.ChatRequest{
		Model:    o.model,
		Messages: chatMessages,
		Stream:   &stream,
	}, func(resp olla.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	return sb.String(), nil
}
