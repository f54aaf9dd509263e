package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// Milvus collection fields.
const (
	FieldID           = "id"
	FieldEmbedding    = "embedding"
	FieldChunk        = "chunk"
	FieldDocumentID   = "document_id"
	FieldChunkIndex   = "chunk_index"
	FieldDocumentName = "document_name"
	FieldUserID       = "user_id"
)

// MilvusStore implements Store on a Milvus collection. Cosine similarity is
// configured as the collection metric, and the user scope is enforced with a
// filter expression evaluated inside Milvus. A batch insert is one Insert
// call, all-or-nothing at the store level.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusStore creates a store bound to the named collection, creating the
// collection and its index on first use.
func NewMilvusStore(ctx context.Context, c client.Client, collection string, dim int, log *logger.Logger) (*MilvusStore, error) {
	if c == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	s := &MilvusStore{log: log, client: c, collection: collection, dim: dim}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the collection and vector index when missing and
// loads it for search.
func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("embedded document chunks").
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim))).
			WithField(entity.NewField().WithName(FieldChunk).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldChunkIndex).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldDocumentName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(FieldUserID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(255))

		if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index on '%s': %w", FieldEmbedding, err)
		}
		s.log.Info(fmt.Sprintf("Created Milvus collection '%s' (dim=%d)", s.collection, s.dim))
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection '%s': %w", s.collection, err)
	}
	return nil
}

// Add inserts a batch of entries as a single Insert call.
func (s *MilvusStore) Add(ctx context.Context, entries []schema.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	embeddings := make([][]float32, len(entries))
	chunks := make([]string, len(entries))
	documentIDs := make([]int64, len(entries))
	chunkIndexes := make([]int64, len(entries))
	documentNames := make([]string, len(entries))
	userIDs := make([]string, len(entries))

	for i, e := range entries {
		if len(e.Embedding) != s.dim {
			return fmt.Errorf("entry %s has dimension %d, collection uses %d", e.ID, len(e.Embedding), s.dim)
		}
		ids[i] = e.ID
		embeddings[i] = e.Embedding
		chunks[i] = e.Text
		documentIDs[i] = int64(e.DocumentID)
		chunkIndexes[i] = int64(e.ChunkIndex)
		documentNames[i] = e.DocumentName
		userIDs[i] = e.UserID
	}

	s.log.Info(fmt.Sprintf("Inserting %d entries into Milvus collection '%s'", len(entries), s.collection))
	_, err := s.client.Insert(ctx, s.collection, "", /* default partition */
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, embeddings),
		entity.NewColumnVarChar(FieldChunk, chunks),
		entity.NewColumnInt64(FieldDocumentID, documentIDs),
		entity.NewColumnInt64(FieldChunkIndex, chunkIndexes),
		entity.NewColumnVarChar(FieldDocumentName, documentNames),
		entity.NewColumnVarChar(FieldUserID, userIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data into Milvus: %w", err)
	}
	return nil
}

// Query performs a cosine similarity search restricted to one user's entries.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int, userID string) ([]schema.ScoredEntry, error) {
	filterExpr := fmt.Sprintf("%s == %q", FieldUserID, userID)
	outputFields := []string{FieldID, FieldChunk, FieldDocumentID, FieldChunkIndex, FieldDocumentName, FieldUserID}

	searchParams, _ := entity.NewIndexIvfFlatSearchParam(10)

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, filterExpr, outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var results []schema.ScoredEntry
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(FieldID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Search result is missing ID field or has wrong type, skipping.")
			continue
		}
		chunkCol, _ := findColumn(FieldChunk).(*entity.ColumnVarChar)
		docIDCol, _ := findColumn(FieldDocumentID).(*entity.ColumnInt64)
		chunkIdxCol, _ := findColumn(FieldChunkIndex).(*entity.ColumnInt64)
		docNameCol, _ := findColumn(FieldDocumentName).(*entity.ColumnVarChar)
		userIDCol, _ := findColumn(FieldUserID).(*entity.ColumnVarChar)

		for i := 0; i < res.ResultCount; i++ {
			entry := schema.ScoredEntry{Score: res.Scores[i]}
			entry.ID = idCol.Data()[i]
			if chunkCol != nil {
				entry.Text = chunkCol.Data()[i]
			}
			if docIDCol != nil {
				entry.DocumentID = uint(docIDCol.Data()[i])
			}
			if chunkIdxCol != nil {
				entry.ChunkIndex = int(chunkIdxCol.Data()[i])
			}
			if docNameCol != nil {
				entry.DocumentName = docNameCol.Data()[i]
			}
			if userIDCol != nil {
				entry.UserID = userIDCol.Data()[i]
			}
			results = append(results, entry)
		}
	}

	return results, nil
}

// DeleteByDocument removes every entry of the document with one delete
// expression.
func (s *MilvusStore) DeleteByDocument(ctx context.Context, documentID uint) error {
	expr := fmt.Sprintf("%s == %d", FieldDocumentID, documentID)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete document %d entries from Milvus: %w", documentID, err)
	}
	return nil
}

// compile-time check to ensure MilvusStore implements the Store interface
var _ Store = (*MilvusStore)(nil)
