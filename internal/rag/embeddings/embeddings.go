// Package embeddings provides text embedding clients behind a common
// interface. Failures are reported as errors; callers at pipeline boundaries
// decide whether a failed embedding is fatal or skippable.
package embeddings

import (
	"context"
	"errors"
)

// ErrBlankText is returned when the input has no embeddable content. Blank
// input is rejected locally; the remote service is never called.
var ErrBlankText = errors.New("cannot embed blank text")

// Provider generates fixed-dimension embedding vectors. All vectors produced
// by one provider share a single dimension; mixing providers within one
// index is invalid.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
