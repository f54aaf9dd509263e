package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"docchat/pkg/logger"
)

// CachedProvider wraps a Provider with a Redis cache keyed by the SHA-256 of
// the input text. Embedding a fixed model is deterministic, so cached
// vectors never go stale; the TTL only bounds memory use. Cache failures are
// logged and fall through to the wrapped provider.
type CachedProvider struct {
	inner  Provider
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedProvider wraps inner with a Redis-backed cache. The prefix keeps
// vectors from different models apart; a zero ttl disables expiry.
func NewCachedProvider(inner Provider, rdb *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, prefix: prefix, ttl: ttl, log: log}
}

func (c *CachedProvider) key(text string) string {
	return fmt.Sprintf("embed:%s:%x", c.prefix, sha256.Sum256([]byte(text)))
}

// Embed returns the cached vector for text when present, otherwise delegates
// to the wrapped provider and stores the result.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var vector []float32
		if err := json.Unmarshal(cached, &vector); err == nil {
			return vector, nil
		}
		c.log.Warn(fmt.Sprintf("discarding malformed cached embedding for key %s", key))
	} else if err != redis.Nil {
		c.log.Warn(fmt.Sprintf("embedding cache read failed: %v", err))
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vector); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warn(fmt.Sprintf("embedding cache write failed: %v", err))
		}
	}

	return vector, nil
}

// EmbedBatch embeds each text through the cache in turn.
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// compile-time check to ensure CachedProvider implements the Provider interface
var _ Provider = (*CachedProvider)(nil)
