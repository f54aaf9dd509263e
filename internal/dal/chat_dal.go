package dal

import (
	"context"
	"errors"

	"docchat/internal/models"
	"gorm.io/gorm"
)

// ChatDAL provides data access methods for chats and their messages.
type ChatDAL struct {
	db *gorm.DB
}

// NewChatDAL creates a new ChatDAL.
func NewChatDAL(db *gorm.DB) *ChatDAL {
	return &ChatDAL{db: db}
}

// GetOrCreate returns the chat with the given ID if it exists and belongs to
// the user. When chatID is zero a new chat is created. A chatID that does
// not exist or belongs to another user is ErrNotFound, never a silent new
// chat.
func (dal *ChatDAL) GetOrCreate(ctx context.Context, userID string, chatID uint) (*models.Chat, error) {
	if chatID == 0 {
		chat := &models.Chat{UserID: userID}
		if err := dal.db.WithContext(ctx).Create(chat).Error; err != nil {
			return nil, err
		}
		return chat, nil
	}

	var chat models.Chat
	result := dal.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, chatID).First(&chat)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &chat, nil
}

// AppendMessage persists one message at the end of a chat.
func (dal *ChatDAL) AppendMessage(ctx context.Context, chatID uint, role, content string) (*models.ChatMessage, error) {
	message := &models.ChatMessage{
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}
	if err := dal.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages retrieves a chat's messages in insertion order, after
// verifying the chat belongs to the user.
func (dal *ChatDAL) ListMessages(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error) {
	var chat models.Chat
	result := dal.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, chatID).First(&chat)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}

	var messages []models.ChatMessage
	result = dal.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at, id").Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}
