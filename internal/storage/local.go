package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var _ FileStore = (*LocalStore)(nil)

// LocalStore keeps uploaded files in a directory on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the file under the storage directory. name must already be a
// sanitized storage name, not the user-supplied filename.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return path, nil
}

// Fetch returns the stored path directly; the file is already local.
func (s *LocalStore) Fetch(ctx context.Context, path string) (string, func(), error) {
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("stored file '%s' not readable: %w", path, err)
	}
	return path, func() {}, nil
}

// Remove deletes the stored file.
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file '%s': %w", path, err)
	}
	return nil
}
