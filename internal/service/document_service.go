// Package service implements the application operations behind the HTTP
// handlers: document lifecycle and grounded chat.
package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docchat/internal/models"
	"docchat/internal/rag/loaders"
	"docchat/internal/rag/vectorstore"
	"docchat/internal/storage"
	"docchat/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedFileType rejects uploads whose extension is not on the
// whitelist.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// sniffLen bounds how many leading bytes are read for content type
// detection.
const sniffLen = 3072

// DocumentRepo is the persistence surface the document service needs.
type DocumentRepo interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, userID string, documentID uint) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Document, error)
	Delete(ctx context.Context, userID string, documentID uint) error
}

// Ingestor accepts documents for background ingestion.
type Ingestor interface {
	// Enqueue reports false when the queue is full; the document then
	// stays pending until re-submitted.
	Enqueue(doc *models.Document) bool
}

// DocumentService handles upload, listing, and deletion of documents.
type DocumentService struct {
	documents DocumentRepo
	files     storage.FileStore
	index     vectorstore.Store
	ingestor  Ingestor
	log       *logger.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(documents DocumentRepo, files storage.FileStore, index vectorstore.Store, ingestor Ingestor, log *logger.Logger) *DocumentService {
	return &DocumentService{
		documents: documents,
		files:     files,
		index:     index,
		ingestor:  ingestor,
		log:       log,
	}
}

// Upload validates and stores a new file, creates its pending document
// record, and queues it for ingestion. The stored name is a fresh UUID
// plus the original extension; the user-supplied filename is kept only as
// display metadata.
func (s *DocumentService) Upload(ctx context.Context, userID, filename string, content io.Reader, size int64) (*models.Document, error) {
	if !loaders.Allowed(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}

	buffered := bufio.NewReaderSize(content, sniffLen)
	s.sniffContentType(filename, buffered)

	ext := strings.ToLower(filepath.Ext(filename))
	storageName := uuid.New().String() + ext
	path, err := s.files.Save(ctx, storageName, buffered, size)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	doc := &models.Document{
		UserID:   userID,
		Filename: filepath.Base(filename),
		FilePath: path,
		FileType: strings.TrimPrefix(ext, "."),
		Status:   models.DocumentPending,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if rmErr := s.files.Remove(ctx, path); rmErr != nil {
			s.log.Error(fmt.Sprintf("Failed to remove orphaned upload %s: %v", path, rmErr))
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if !s.ingestor.Enqueue(doc) {
		s.log.Warn(fmt.Sprintf("Ingestion queue full, document %d stays pending", doc.ID))
	}
	return doc, nil
}

// sniffContentType compares the detected content type against the declared
// extension. A mismatch is logged, not rejected: the extension still decides
// which parser runs, and a misdeclared file simply extracts nothing.
func (s *DocumentService) sniffContentType(filename string, r *bufio.Reader) {
	head, err := r.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return
	}
	detected := mimetype.Detect(head)
	ext := strings.ToLower(filepath.Ext(filename))
	if !mimetype.EqualsAny(detected.String(), declaredMimeTypes(ext)...) {
		s.log.Warn(fmt.Sprintf("Upload %s declares %s but content looks like %s", filename, ext, detected.String()))
	}
}

// declaredMimeTypes maps a whitelisted extension to content types that
// plausibly carry it. Plain text covers txt and rtf-as-text edge cases.
func declaredMimeTypes(ext string) []string {
	switch ext {
	case ".pdf":
		return []string{"application/pdf"}
	case ".doc":
		return []string{"application/msword", "application/x-ole-storage"}
	case ".docx":
		return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"}
	case ".rtf":
		return []string{"text/rtf", "application/rtf", "text/plain"}
	default:
		return []string{"text/plain", "text/plain; charset=utf-8"}
	}
}

// List returns the user's documents, newest first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.documents.ListByUser(ctx, userID)
}

// Delete removes a document the user owns: index entries first, then the
// stored file, then the record. A file removal failure is logged but does
// not abort the deletion; a dangling file is recoverable, a dangling index
// entry would keep leaking into retrieval.
func (s *DocumentService) Delete(ctx context.Context, userID string, documentID uint) error {
	doc, err := s.documents.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete index entries for document %d: %w", doc.ID, err)
	}

	if err := s.files.Remove(ctx, doc.FilePath); err != nil {
		s.log.Error(fmt.Sprintf("Failed to remove stored file %s: %v", doc.FilePath, err))
	}

	return s.documents.Delete(ctx, userID, documentID)
}
