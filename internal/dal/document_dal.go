// Package dal provides data access methods for documents and chats.
package dal

import (
	"context"
	"errors"

	"docchat/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist or is owned by
// another user. Callers cannot distinguish the two cases.
var ErrNotFound = errors.New("record not found")

// DocumentDAL provides data access methods for uploaded documents.
type DocumentDAL struct {
	db *gorm.DB
}

// NewDocumentDAL creates a new DocumentDAL.
func NewDocumentDAL(db *gorm.DB) *DocumentDAL {
	return &DocumentDAL{db: db}
}

// Create persists a new document record. The caller sets UserID, Filename,
// FilePath, and FileType; Status defaults to pending.
func (dal *DocumentDAL) Create(ctx context.Context, doc *models.Document) error {
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}
	return dal.db.WithContext(ctx).Create(doc).Error
}

// GetByID retrieves a document owned by the given user.
func (dal *DocumentDAL) GetByID(ctx context.Context, userID string, documentID uint) (*models.Document, error) {
	var doc models.Document
	result := dal.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, documentID).First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &doc, nil
}

// ListByUser retrieves all documents for a given user, newest first.
func (dal *DocumentDAL) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var docs []*models.Document
	result := dal.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&docs)
	if result.Error != nil {
		return nil, result.Error
	}
	return docs, nil
}

// SetStatus updates a document's lifecycle status.
func (dal *DocumentDAL) SetStatus(ctx context.Context, documentID uint, status models.DocumentStatus) error {
	result := dal.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", documentID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkProcessed flips a document to processed and records its vector
// reference in a single update.
func (dal *DocumentDAL) MarkProcessed(ctx context.Context, documentID uint, vectorRef string) error {
	result := dal.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", documentID).Updates(map[string]interface{}{
		"status":     models.DocumentProcessed,
		"vector_ref": vectorRef,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document record for a specific user.
// It ensures that the user owns the document before deleting.
func (dal *DocumentDAL) Delete(ctx context.Context, userID string, documentID uint) error {
	result := dal.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, documentID).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
