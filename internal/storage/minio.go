package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

var _ FileStore = (*MinIOStore)(nil)

// MinIOStore keeps uploaded files as objects in a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates a MinIOStore over an existing client. The bucket
// must already exist.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Save uploads the file content under the given object key.
func (s *MinIOStore) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload object '%s': %w", name, err)
	}
	return name, nil
}

// Fetch downloads the object into a temporary file. The file keeps the
// object key's extension so type dispatch by extension still works.
func (s *MinIOStore) Fetch(ctx context.Context, path string) (string, func(), error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to get object '%s': %w", path, err)
	}
	defer obj.Close()

	tmp, err := os.CreateTemp("", "docchat-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, obj); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("failed to download object '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

// Remove deletes the object.
func (s *MinIOStore) Remove(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object '%s': %w", path, err)
	}
	return nil
}
