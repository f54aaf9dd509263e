// Package storage abstracts where uploaded files live. The ingestion
// pipeline reads files through a local path, so remote backends fetch
// objects into a temporary file first.
package storage

import (
	"context"
	"io"
)

// FileStore persists uploaded files and makes them readable for ingestion.
type FileStore interface {
	// Save writes the file content under the given storage name and
	// returns the path or object key to persist on the document record.
	Save(ctx context.Context, name string, r io.Reader, size int64) (string, error)

	// Fetch makes the stored file available at a local path. The caller
	// must invoke cleanup when done reading; for local backends cleanup
	// is a no-op.
	Fetch(ctx context.Context, path string) (localPath string, cleanup func(), err error)

	// Remove deletes the stored file.
	Remove(ctx context.Context, path string) error
}
