// Package llm wraps the chat generation backends behind one interface.
package llm

import (
	"context"

	"docchat/internal/rag/schema"
)

// LLM generates one assistant reply from an ordered message sequence.
type LLM interface {
	Generate(ctx context.Context, messages []schema.Message) (string, error)
}
