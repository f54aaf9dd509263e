package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"docchat/internal/rag/schema"
)

// MemoryStore is a mutex-guarded, brute-force cosine similarity store. It
// backs tests and single-node deployments that run without Milvus.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	entries []schema.IndexEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add inserts entries after checking that all vectors share one dimension.
// The whole batch is applied atomically under the lock.
func (s *MemoryStore) Add(ctx context.Context, entries []schema.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("entry %s has no embedding", e.ID)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("entry %s has dimension %d, index uses %d", e.ID, len(e.Embedding), dim)
		}
	}

	s.dim = dim
	s.entries = append(s.entries, entries...)
	return nil
}

// Query scans every entry owned by userID and returns the topK most similar
// by cosine similarity, highest first.
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, topK int, userID string) ([]schema.ScoredEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	var results []schema.ScoredEntry
	for _, e := range s.entries {
		if e.UserID != userID {
			continue
		}
		results = append(results, schema.ScoredEntry{
			IndexEntry: e,
			Score:      cosine(embedding, e.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocument removes every entry belonging to the document.
func (s *MemoryStore) DeleteByDocument(ctx context.Context, documentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// compile-time check to ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)
