package pipeline

import (
	"strings"

	"docchat/internal/models"
	"docchat/internal/rag/schema"
)

// systemPrompt is the fixed instruction prepended to every conversation.
const systemPrompt = "You are an AI assistant helping to create Emotional Support Animal (ESA) reports. " +
	"Your goal is to gather information about the user's mental health condition, " +
	"how an emotional support animal helps them, and relevant medical history. " +
	"Be empathetic, professional, and thorough in your responses."

// historyLimit caps how many prior messages are included in a prompt so the
// prompt size stays bounded.
const historyLimit = 10

const contextSeparator = "\n\n---\n\n"

// BuildMessages assembles the exact message sequence sent to the generation
// service: the system instruction, the most recent historyLimit prior
// messages oldest-first, one synthesized context turn when retrieval found
// anything, and the new user message last. The ordering is deterministic.
func BuildMessages(history []models.ChatMessage, retrieved []string, userMessage string) []schema.Message {
	messages := make([]schema.Message, 0, len(history)+3)
	messages = append(messages, schema.Message{Role: schema.RoleSystem, Content: systemPrompt})

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, m := range history {
		messages = append(messages, schema.Message{Role: m.Role, Content: m.Content})
	}

	if len(retrieved) > 0 {
		messages = append(messages, schema.Message{Role: schema.RoleAssistant, Content: contextMessage(retrieved)})
	}

	messages = append(messages, schema.Message{Role: schema.RoleUser, Content: userMessage})
	return messages
}

// contextMessage frames the retrieved chunks as a single assistant turn.
func contextMessage(chunks []string) string {
	return "I've found some relevant information from your documents that might help: \n\n" +
		strings.Join(chunks, contextSeparator) +
		"\n\nLet me use this information to help you better."
}
