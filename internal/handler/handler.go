// Package handler exposes the HTTP API over gin.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"docchat/internal/dal"
	"docchat/internal/models"
	"docchat/internal/service"
	"docchat/pkg/logger"
	"github.com/gin-gonic/gin"
)

// DocumentOperations is the slice of the document service the API uses.
type DocumentOperations interface {
	Upload(ctx context.Context, userID, filename string, content io.Reader, size int64) (*models.Document, error)
	List(ctx context.Context, userID string) ([]*models.Document, error)
	Delete(ctx context.Context, userID string, documentID uint) error
}

// ChatOperations is the slice of the chat service the API uses.
type ChatOperations interface {
	SendMessage(ctx context.Context, userID string, chatID uint, message string) (string, uint, error)
	History(ctx context.Context, userID string, chatID uint) ([]models.ChatMessage, error)
}

// API provides handlers for the document chat service.
type API struct {
	documents DocumentOperations
	chats     ChatOperations
	logger    *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(documents DocumentOperations, chats ChatOperations, logger *logger.Logger) *API {
	return &API{
		documents: documents,
		chats:     chats,
		logger:    logger,
	}
}

// UploadDocumentHandler accepts a multipart file upload for ingestion.
func (a *API) UploadDocumentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file in request"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}
	defer file.Close()

	doc, err := a.documents.Upload(c.Request.Context(), userID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFileType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
			return
		}
		a.logger.WithUser(userID).Error(fmt.Sprintf("Upload failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":       doc.ID,
		"filename": doc.Filename,
		"status":   doc.Status,
	})
}

// ListDocumentsHandler returns the user's documents with their ingestion
// status.
func (a *API) ListDocumentsHandler(c *gin.Context) {
	userID := c.GetString("userID")

	docs, err := a.documents.List(c.Request.Context(), userID)
	if err != nil {
		a.logger.WithUser(userID).Error(fmt.Sprintf("List documents failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}

	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, gin.H{
			"id":         d.ID,
			"filename":   d.Filename,
			"file_type":  d.FileType,
			"status":     d.Status,
			"created_at": d.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

// DeleteDocumentHandler removes a document, its stored file, and its index
// entries.
func (a *API) DeleteDocumentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	documentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return
	}

	if err := a.documents.Delete(c.Request.Context(), userID, uint(documentID)); err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		a.logger.WithUser(userID).Error(fmt.Sprintf("Delete document %d failed: %v", documentID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": documentID})
}

// SendMessageHandler runs one grounded conversation turn.
func (a *API) SendMessageHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var payload struct {
		ChatID  uint   `json:"chat_id"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	reply, chatID, err := a.chats.SendMessage(c.Request.Context(), userID, payload.ChatID, payload.Message)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		a.logger.WithUser(userID).Error(fmt.Sprintf("Chat turn failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id": chatID,
		"reply":   reply,
	})
}

// ChatHistoryHandler returns a chat's messages in order.
func (a *API) ChatHistoryHandler(c *gin.Context) {
	userID := c.GetString("userID")

	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}

	messages, err := a.chats.History(c.Request.Context(), userID, uint(chatID))
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		a.logger.WithUser(userID).Error(fmt.Sprintf("History for chat %d failed: %v", chatID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat history"})
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		out = append(out, gin.H{
			"role":       m.Role,
			"content":    m.Content,
			"created_at": m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "messages": out})
}
