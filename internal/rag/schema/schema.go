package schema

import "fmt"

// Message roles understood by the generation service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a prompt sent to the generation service.
type Message struct {
	Role    string
	Content string
}

// IndexEntry is the unit stored in the vector index: one embedded chunk of a
// document together with the metadata needed for scoped retrieval and
// per-document deletion. Entries are immutable once added.
type IndexEntry struct {
	// ID is the composite chunk key, see EntryID.
	ID string

	// Text is the cleaned chunk content returned to retrieval callers.
	Text string

	// Embedding is the vector representation of Text. All entries in a
	// collection must share one dimension.
	Embedding []float32

	DocumentID   uint
	ChunkIndex   int
	DocumentName string
	UserID       string
}

// ScoredEntry is an IndexEntry paired with its similarity to a query vector.
type ScoredEntry struct {
	IndexEntry
	Score float32
}

// EntryID builds the composite key identifying one chunk of one document.
func EntryID(documentID uint, chunkIndex int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, chunkIndex)
}
