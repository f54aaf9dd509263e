// Package milvus opens the Milvus client connection. Collection setup lives
// with the vector store that owns the schema.
package milvus

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// Connect creates a Milvus client for the configured address.
func Connect(ctx context.Context, cfg *config.MilvusConfig) (client.Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}
	return c, nil
}

// HealthCheck lists collections to verify connectivity.
func HealthCheck(ctx context.Context, c client.Client) error {
	if _, err := c.ListCollections(ctx); err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}
