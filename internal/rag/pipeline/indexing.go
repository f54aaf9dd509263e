// Package pipeline orchestrates ingestion, retrieval, and prompt assembly
// for document-grounded conversations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat/internal/models"
	"docchat/internal/rag/embeddings"
	"docchat/internal/rag/normalize"
	"docchat/internal/rag/schema"
	"docchat/internal/rag/vectorstore"
	"docchat/pkg/logger"
)

// Ingestion failure modes. Both leave the document in the failed state with
// nothing written to the index.
var (
	ErrNoText           = errors.New("no text extracted from document")
	ErrNoChunksEmbedded = errors.New("no chunks could be embedded")
)

// TextExtractor pulls raw text out of a stored file, newlines intact.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Splitter produces overlapping text chunks from extracted text.
type Splitter interface {
	SplitText(text string) []string
}

// DocumentUpdater is the persistence port the pipeline reports progress and
// results to.
type DocumentUpdater interface {
	SetStatus(ctx context.Context, documentID uint, status models.DocumentStatus) error
	// MarkProcessed flips the document to processed and links its vector
	// reference in a single update.
	MarkProcessed(ctx context.Context, documentID uint, vectorRef string) error
}

// IndexingPipeline ingests one document: extract, chunk, clean, embed, and
// index. A chunk whose embedding fails is skipped with a warning; the
// document still succeeds with whatever chunks survived. Extraction
// failures, index write failures, and zero surviving chunks fail the whole
// document without partial index writes.
type IndexingPipeline struct {
	extractor TextExtractor
	splitter  Splitter
	embedder  embeddings.Provider
	store     vectorstore.Store
	documents DocumentUpdater
	log       *logger.Logger
}

// NewIndexingPipeline creates an IndexingPipeline.
func NewIndexingPipeline(
	extractor TextExtractor,
	splitter Splitter,
	embedder embeddings.Provider,
	store vectorstore.Store,
	documents DocumentUpdater,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		documents: documents,
		log:       log,
	}
}

// Run ingests doc and returns nil once the document is marked processed.
// Re-running for an already-ingested document is safe: prior index entries
// are purged before the new batch is written.
func (p *IndexingPipeline) Run(ctx context.Context, doc *models.Document) error {
	p.log.Info(fmt.Sprintf("Starting ingestion for document %d (%s)", doc.ID, doc.Filename))

	if err := p.documents.SetStatus(ctx, doc.ID, models.DocumentProcessing); err != nil {
		return fmt.Errorf("failed to mark document %d processing: %w", doc.ID, err)
	}

	text, err := p.extractor.ExtractText(ctx, doc.FilePath)
	if err != nil {
		return p.fail(ctx, doc, fmt.Errorf("extraction failed: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		p.log.Warn(fmt.Sprintf("No text extracted from document %s", doc.Filename))
		return p.fail(ctx, doc, ErrNoText)
	}

	chunks := p.splitter.SplitText(text)
	if len(chunks) == 0 {
		p.log.Warn(fmt.Sprintf("No chunks generated for document %s", doc.Filename))
		return p.fail(ctx, doc, ErrNoText)
	}

	entries := make([]schema.IndexEntry, 0, len(chunks))
	for i, chunk := range chunks {
		clean := normalize.Clean(chunk)
		if clean == "" {
			p.log.Warn(fmt.Sprintf("Chunk %d of document %s is empty after cleanup, skipping", i, doc.Filename))
			continue
		}

		vector, err := p.embedder.Embed(ctx, clean)
		if err != nil {
			p.log.Warn(fmt.Sprintf("Could not embed chunk %d of document %s: %v", i, doc.Filename, err))
			continue
		}

		entries = append(entries, schema.IndexEntry{
			ID:           schema.EntryID(doc.ID, i),
			Text:         clean,
			Embedding:    vector,
			DocumentID:   doc.ID,
			ChunkIndex:   i,
			DocumentName: doc.Filename,
			UserID:       doc.UserID,
		})
	}

	if len(entries) == 0 {
		p.log.Warn(fmt.Sprintf("No valid embeddings generated for document %s", doc.Filename))
		return p.fail(ctx, doc, ErrNoChunksEmbedded)
	}

	// Purge any entries from a previous ingestion run so a re-ingest never
	// duplicates chunks.
	if err := p.store.DeleteByDocument(ctx, doc.ID); err != nil {
		return p.fail(ctx, doc, fmt.Errorf("failed to purge prior entries: %w", err))
	}

	if err := p.store.Add(ctx, entries); err != nil {
		return p.fail(ctx, doc, fmt.Errorf("index write failed: %w", err))
	}

	vectorRef := fmt.Sprintf("doc_%d", doc.ID)
	if err := p.documents.MarkProcessed(ctx, doc.ID, vectorRef); err != nil {
		return fmt.Errorf("failed to mark document %d processed: %w", doc.ID, err)
	}

	p.log.Info(fmt.Sprintf("Successfully ingested document %s with %d of %d chunks", doc.Filename, len(entries), len(chunks)))
	return nil
}

// fail marks the document failed (best effort) and returns cause.
func (p *IndexingPipeline) fail(ctx context.Context, doc *models.Document, cause error) error {
	if err := p.documents.SetStatus(ctx, doc.ID, models.DocumentFailed); err != nil {
		p.log.Error(fmt.Sprintf("Failed to mark document %d failed: %v", doc.ID, err))
	}
	return fmt.Errorf("ingestion of document %d failed: %w", doc.ID, cause)
}
