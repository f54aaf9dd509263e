package service

import (
	"context"
	"fmt"

	"docchat/internal/llm"
	"docchat/internal/models"
	"docchat/internal/rag/pipeline"
	"docchat/pkg/logger"
)

// apologyReply is returned and persisted when generation fails, so the
// conversation stays consistent for the user and in storage.
const apologyReply = "I apologize, but I encountered an error while processing your request. Please try again later."

// ChatRepo is the persistence surface the chat service needs.
type ChatRepo interface {
	GetOrCreate(ctx context.Context, userID string, chatID uint) (*models.Chat, error)
	AppendMessage(ctx context.Context, chatID uint, role, content string) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error)
}

// Retriever returns the texts of the chunks most relevant to a query.
type Retriever interface {
	Run(ctx context.Context, query, userID string, topK int) []string
}

// ChatService runs one grounded conversation turn.
type ChatService struct {
	chats     ChatRepo
	retriever Retriever
	generator llm.LLM
	topK      int
	log       *logger.Logger
}

// NewChatService creates a ChatService. topK controls how many retrieved
// chunks ground each reply.
func NewChatService(chats ChatRepo, retriever Retriever, generator llm.LLM, topK int, log *logger.Logger) *ChatService {
	return &ChatService{
		chats:     chats,
		retriever: retriever,
		generator: generator,
		topK:      topK,
		log:       log,
	}
}

// SendMessage handles one user message: resolve the chat, assemble the
// grounded prompt, generate a reply, and persist both turns. Generation
// failure degrades to a fixed apology reply rather than an error, and the
// apology is persisted like any assistant turn.
func (s *ChatService) SendMessage(ctx context.Context, userID string, chatID uint, message string) (string, uint, error) {
	chat, err := s.chats.GetOrCreate(ctx, userID, chatID)
	if err != nil {
		return "", 0, err
	}

	// History is read before the new message is persisted so the prompt's
	// history window holds only prior turns.
	history, err := s.chats.ListMessages(ctx, userID, chat.ID)
	if err != nil {
		return "", 0, err
	}

	if _, err := s.chats.AppendMessage(ctx, chat.ID, models.MessageRoleUser, message); err != nil {
		return "", 0, fmt.Errorf("failed to persist user message: %w", err)
	}

	retrieved := s.retriever.Run(ctx, message, userID, s.topK)
	messages := pipeline.BuildMessages(history, retrieved, message)

	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		s.log.WithUser(userID).Error(fmt.Sprintf("Generation failed for chat %d: %v", chat.ID, err))
		reply = apologyReply
	}

	if _, err := s.chats.AppendMessage(ctx, chat.ID, models.MessageRoleAssistant, reply); err != nil {
		return "", 0, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	return reply, chat.ID, nil
}

// History returns a chat's messages in order, verifying ownership.
func (s *ChatService) History(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error) {
	return s.chats.ListMessages(ctx, userID, chatID)
}
