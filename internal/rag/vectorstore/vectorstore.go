// Package vectorstore stores embedded chunks and serves scoped similarity
// search over them.
package vectorstore

import (
	"context"

	"docchat/internal/rag/schema"
)

// Store is the vector index. Entries are append-only and immutable; the only
// removal operation is bulk deletion of one document's entries, which keeps
// the index consistent when a document is deleted or re-ingested.
type Store interface {
	// Add inserts a batch of entries. The batch is a single store call, so
	// it is all-or-nothing at the store level; implementations document any
	// weaker guarantee.
	Add(ctx context.Context, entries []schema.IndexEntry) error

	// Query returns up to topK entries most similar to the given vector by
	// cosine similarity, highest first. Only entries owned by userID are
	// considered; the scope is a hard security boundary, never a ranking
	// preference.
	Query(ctx context.Context, embedding []float32, topK int, userID string) ([]schema.ScoredEntry, error)

	// DeleteByDocument removes every entry belonging to the document.
	DeleteByDocument(ctx context.Context, documentID uint) error
}
