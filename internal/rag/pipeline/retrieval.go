package pipeline

import (
	"context"
	"fmt"

	"docchat/internal/rag/embeddings"
	"docchat/internal/rag/vectorstore"
	"docchat/pkg/logger"
)

// DefaultTopK is the retrieval result count used when the caller passes a
// non-positive value.
const DefaultTopK = 5

// RetrievalPipeline answers "which indexed chunks are relevant to this
// query" for one user. Retrieval never fails the conversation: embedding
// failures and empty indexes both yield an empty result, logged but not
// surfaced, and the caller proceeds ungrounded.
type RetrievalPipeline struct {
	embedder embeddings.Provider
	store    vectorstore.Store
	log      *logger.Logger
}

// NewRetrievalPipeline creates a RetrievalPipeline.
func NewRetrievalPipeline(embedder embeddings.Provider, store vectorstore.Store, log *logger.Logger) *RetrievalPipeline {
	return &RetrievalPipeline{embedder: embedder, store: store, log: log}
}

// Run embeds the query and returns the texts of the topK most similar
// chunks indexed for userID, best match first. An empty result is a normal
// outcome, not an error.
func (p *RetrievalPipeline) Run(ctx context.Context, query, userID string, topK int) []string {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		p.log.Warn(fmt.Sprintf("Could not embed query for user %s: %v", userID, err))
		return nil
	}

	results, err := p.store.Query(ctx, vector, topK, userID)
	if err != nil {
		p.log.Error(fmt.Sprintf("Vector store query failed for user %s: %v", userID, err))
		return nil
	}
	if len(results) == 0 {
		p.log.Info("No relevant chunks found in the index")
		return nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}
