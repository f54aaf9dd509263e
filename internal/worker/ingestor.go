// Package worker runs document ingestion in the background so uploads
// return immediately.
package worker

import (
	"context"
	"fmt"
	"sync"

	"docchat/internal/models"
	"docchat/internal/storage"
	"docchat/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Pipeline is the ingestion entrypoint the workers drive.
type Pipeline interface {
	Run(ctx context.Context, doc *models.Document) error
}

// IngestWorker consumes queued documents with a fixed pool of workers.
// Enqueueing the same document twice while its first ingestion is still
// queued or running is a no-op.
type IngestWorker struct {
	pipeline Pipeline
	files    storage.FileStore
	log      *logger.Logger

	jobs chan *models.Document

	mu       sync.Mutex
	inflight map[uint]bool
	closed   bool

	group   *errgroup.Group
	workers int
}

// NewIngestWorker creates an IngestWorker with the given pool size and
// queue capacity.
func NewIngestWorker(pipeline Pipeline, files storage.FileStore, workers, queue int, log *logger.Logger) *IngestWorker {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = 1
	}
	return &IngestWorker{
		pipeline: pipeline,
		files:    files,
		log:      log,
		jobs:     make(chan *models.Document, queue),
		inflight: make(map[uint]bool),
		workers:  workers,
	}
}

// Enqueue submits a document for ingestion. It reports false when the queue
// is full or the worker is shut down; the document stays in its current
// status either way.
func (w *IngestWorker) Enqueue(doc *models.Document) bool {
	w.mu.Lock()
	if w.closed || w.inflight[doc.ID] {
		inflight := w.inflight[doc.ID]
		w.mu.Unlock()
		return inflight
	}
	w.inflight[doc.ID] = true
	w.mu.Unlock()

	select {
	case w.jobs <- doc:
		return true
	default:
		w.release(doc.ID)
		return false
	}
}

// Start launches the worker pool. Workers drain the queue until Close is
// called or ctx is cancelled.
func (w *IngestWorker) Start(ctx context.Context) {
	w.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		w.group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case doc, ok := <-w.jobs:
					if !ok {
						return nil
					}
					w.ingest(ctx, doc)
				}
			}
		})
	}
}

// Close stops accepting documents and waits for in-flight ingestions to
// finish.
func (w *IngestWorker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.jobs)
	if w.group != nil {
		if err := w.group.Wait(); err != nil && err != context.Canceled {
			w.log.Error(fmt.Sprintf("Ingestion pool stopped with error: %v", err))
		}
	}
}

func (w *IngestWorker) ingest(ctx context.Context, doc *models.Document) {
	defer w.release(doc.ID)

	localPath, cleanup, err := w.files.Fetch(ctx, doc.FilePath)
	if err != nil {
		w.log.Error(fmt.Sprintf("Cannot fetch stored file for document %d: %v", doc.ID, err))
		return
	}
	defer cleanup()

	// The pipeline reads from a local path; point it at the fetched copy.
	local := *doc
	local.FilePath = localPath

	if err := w.pipeline.Run(ctx, &local); err != nil {
		w.log.Error(fmt.Sprintf("Ingestion failed: %v", err))
	}
}

func (w *IngestWorker) release(documentID uint) {
	w.mu.Lock()
	delete(w.inflight, documentID)
	w.mu.Unlock()
}
