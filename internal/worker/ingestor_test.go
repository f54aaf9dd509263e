package worker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"docchat/internal/models"
	"docchat/internal/storage"
	"docchat/pkg/logger"
)

type countingPipeline struct {
	mu   sync.Mutex
	runs map[uint]int
	slow time.Duration
}

func newCountingPipeline() *countingPipeline {
	return &countingPipeline{runs: map[uint]int{}}
}

func (p *countingPipeline) Run(ctx context.Context, doc *models.Document) error {
	if p.slow > 0 {
		time.Sleep(p.slow)
	}
	p.mu.Lock()
	p.runs[doc.ID]++
	p.mu.Unlock()
	return nil
}

func (p *countingPipeline) count(id uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs[id]
}

func testFiles(t *testing.T) (storage.FileStore, string) {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path, err := files.Save(context.Background(), "a.txt", strings.NewReader("text"), 4)
	if err != nil {
		t.Fatal(err)
	}
	return files, path
}

func TestIngestWorkerProcessesQueuedDocuments(t *testing.T) {
	files, path := testFiles(t)
	p := newCountingPipeline()
	w := NewIngestWorker(p, files, 2, 8, logger.New("test"))
	w.Start(context.Background())

	for id := uint(1); id <= 5; id++ {
		if !w.Enqueue(&models.Document{ID: id, FilePath: path}) {
			t.Fatalf("Enqueue(%d) rejected", id)
		}
	}
	w.Close()

	for id := uint(1); id <= 5; id++ {
		if p.count(id) != 1 {
			t.Errorf("document %d ingested %d times, want 1", id, p.count(id))
		}
	}
}

func TestIngestWorkerDeduplicatesInflight(t *testing.T) {
	files, path := testFiles(t)
	p := newCountingPipeline()
	p.slow = 50 * time.Millisecond
	w := NewIngestWorker(p, files, 1, 8, logger.New("test"))
	w.Start(context.Background())

	doc := &models.Document{ID: 1, FilePath: path}
	w.Enqueue(doc)
	w.Enqueue(doc)
	w.Enqueue(doc)
	w.Close()

	if p.count(1) != 1 {
		t.Errorf("document ingested %d times, want 1", p.count(1))
	}
}

func TestIngestWorkerQueueFull(t *testing.T) {
	files, path := testFiles(t)
	p := newCountingPipeline()
	w := NewIngestWorker(p, files, 1, 1, logger.New("test"))
	// Not started, so the single queue slot fills and stays full.

	if !w.Enqueue(&models.Document{ID: 1, FilePath: path}) {
		t.Fatal("first Enqueue rejected")
	}
	if w.Enqueue(&models.Document{ID: 2, FilePath: path}) {
		t.Error("Enqueue accepted past queue capacity")
	}

	w.Start(context.Background())
	w.Close()
}

func TestIngestWorkerRejectsAfterClose(t *testing.T) {
	files, path := testFiles(t)
	w := NewIngestWorker(newCountingPipeline(), files, 1, 4, logger.New("test"))
	w.Start(context.Background())
	w.Close()

	if w.Enqueue(&models.Document{ID: 9, FilePath: path}) {
		t.Error("Enqueue accepted after Close")
	}
}
