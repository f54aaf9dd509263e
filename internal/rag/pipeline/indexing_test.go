package pipeline

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/models"
	"docchat/internal/rag/vectorstore"
	"docchat/pkg/logger"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeSplitter struct {
	chunks []string
}

func (f *fakeSplitter) SplitText(text string) []string {
	return f.chunks
}

// fakeEmbedder returns a unit vector per text, failing for texts listed in
// failOn.
type fakeEmbedder struct {
	failOn map[string]bool
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn[text] {
		return nil, errors.New("embedding service unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeUpdater records status transitions.
type fakeUpdater struct {
	statuses  []models.DocumentStatus
	vectorRef string
}

func (f *fakeUpdater) SetStatus(ctx context.Context, documentID uint, status models.DocumentStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeUpdater) MarkProcessed(ctx context.Context, documentID uint, vectorRef string) error {
	f.statuses = append(f.statuses, models.DocumentProcessed)
	f.vectorRef = vectorRef
	return nil
}

func (f *fakeUpdater) last() models.DocumentStatus {
	if len(f.statuses) == 0 {
		return ""
	}
	return f.statuses[len(f.statuses)-1]
}

func testDocument() *models.Document {
	return &models.Document{ID: 7, UserID: "u1", Filename: "report.txt", FilePath: "report.txt"}
}

func newTestPipeline(extractor TextExtractor, splitter Splitter, embedder *fakeEmbedder, store vectorstore.Store, updater *fakeUpdater) *IndexingPipeline {
	return NewIndexingPipeline(extractor, splitter, embedder, store, updater, logger.New("test"))
}

func TestIngestSkipsFailedChunk(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	updater := &fakeUpdater{}
	embedder := &fakeEmbedder{failOn: map[string]bool{"chunk two": true}}
	p := newTestPipeline(
		&fakeExtractor{text: "whatever"},
		&fakeSplitter{chunks: []string{"chunk one", "chunk two", "chunk three"}},
		embedder,
		store,
		updater,
	)

	if err := p.Run(context.Background(), testDocument()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.Len() != 2 {
		t.Errorf("got %d indexed entries, want 2", store.Len())
	}
	if updater.last() != models.DocumentProcessed {
		t.Errorf("document status = %s, want processed", updater.last())
	}
	if updater.vectorRef != "doc_7" {
		t.Errorf("vector ref = %q, want doc_7", updater.vectorRef)
	}
}

func TestIngestAllChunksFail(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	updater := &fakeUpdater{}
	embedder := &fakeEmbedder{failOn: map[string]bool{"a": true, "b": true}}
	p := newTestPipeline(
		&fakeExtractor{text: "whatever"},
		&fakeSplitter{chunks: []string{"a", "b"}},
		embedder,
		store,
		updater,
	)

	err := p.Run(context.Background(), testDocument())
	if !errors.Is(err, ErrNoChunksEmbedded) {
		t.Fatalf("Run() error = %v, want ErrNoChunksEmbedded", err)
	}
	if store.Len() != 0 {
		t.Errorf("got %d indexed entries, want 0", store.Len())
	}
	if updater.last() != models.DocumentFailed {
		t.Errorf("document status = %s, want failed", updater.last())
	}
}

func TestIngestNoTextExtracted(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	updater := &fakeUpdater{}
	p := newTestPipeline(
		&fakeExtractor{text: "   \n "},
		&fakeSplitter{chunks: nil},
		&fakeEmbedder{},
		store,
		updater,
	)

	err := p.Run(context.Background(), testDocument())
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("Run() error = %v, want ErrNoText", err)
	}
	if store.Len() != 0 {
		t.Errorf("index written despite extraction failure")
	}
	if updater.last() != models.DocumentFailed {
		t.Errorf("document status = %s, want failed", updater.last())
	}
}

func TestIngestExtractionError(t *testing.T) {
	updater := &fakeUpdater{}
	p := newTestPipeline(
		&fakeExtractor{err: errors.New("corrupt file")},
		&fakeSplitter{},
		&fakeEmbedder{},
		vectorstore.NewMemoryStore(),
		updater,
	)

	if err := p.Run(context.Background(), testDocument()); err == nil {
		t.Fatal("expected error")
	}
	if updater.last() != models.DocumentFailed {
		t.Errorf("document status = %s, want failed", updater.last())
	}
}

// Re-ingesting a document replaces its entries instead of duplicating them.
func TestIngestIdempotent(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	updater := &fakeUpdater{}
	p := newTestPipeline(
		&fakeExtractor{text: "whatever"},
		&fakeSplitter{chunks: []string{"chunk one", "chunk two"}},
		&fakeEmbedder{},
		store,
		updater,
	)

	doc := testDocument()
	for run := 0; run < 3; run++ {
		if err := p.Run(context.Background(), doc); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	if store.Len() != 2 {
		t.Errorf("got %d entries after re-ingestion, want 2", store.Len())
	}
}

// Chunk ordinals in entry ids follow the chunk sequence even when a chunk is
// skipped, so the composite key always names the same span of the document.
func TestIngestEntryOrdinals(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	embedder := &fakeEmbedder{failOn: map[string]bool{"middle": true}}
	p := newTestPipeline(
		&fakeExtractor{text: "whatever"},
		&fakeSplitter{chunks: []string{"first", "middle", "last"}},
		embedder,
		store,
		&fakeUpdater{},
	)

	if err := p.Run(context.Background(), testDocument()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, "u1")
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, r := range results {
		got[r.ID] = true
	}
	for _, want := range []string{"doc_7_chunk_0", "doc_7_chunk_2"} {
		if !got[want] {
			t.Errorf("missing entry %s, got %v", want, got)
		}
	}
	if got["doc_7_chunk_1"] {
		t.Error("skipped chunk was indexed")
	}
}
