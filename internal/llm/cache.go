package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedClient decorates a Client with a Redis-backed cache keyed on
// hash(prompt+system+model+options), short-circuiting identical calls.
// Caching is a decorator over an explicit Client, not ambient process
// state (spec §9 "Cache as optional side-channel"), grounded on
// db/repository/redis.go's CacheRepository (SetCache/GetCache).
type CachedClient struct {
	inner Client
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedClient wraps inner with a Redis cache. A zero ttl disables
// expiry (entries live until evicted).
func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, redis: rdb, ttl: ttl}
}

type cachedResponse struct {
	Response Response `json:"response"`
}

func cacheKey(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("llm:%s:%s", prefix, hex.EncodeToString(h.Sum(nil)))
}

// Generate checks the cache first unless req.DisableCache is set.
func (c *CachedClient) Generate(ctx context.Context, req Request) (Response, error) {
	if req.DisableCache {
		return c.inner.Generate(ctx, req)
	}

	key := cacheKey("generate", req.Prompt, req.System, req.Model, fmt.Sprintf("%d|%f", req.MaxTokens, req.Temperature))

	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached cachedResponse
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached.Response, nil
		}
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return resp, err
	}

	if data, mErr := json.Marshal(cachedResponse{Response: resp}); mErr == nil {
		c.redis.Set(ctx, key, data, c.ttl)
	}

	return resp, nil
}

// CreateEmbedding checks the cache first; embeddings are never
// call-disableable since they carry no generation-specific options.
func (c *CachedClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey("embed", text)

	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if jsonErr := json.Unmarshal(raw, &vec); jsonErr == nil {
			return vec, nil
		}
	}

	vec, err := c.inner.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, mErr := json.Marshal(vec); mErr == nil {
		c.redis.Set(ctx, key, data, c.ttl)
	}

	return vec, nil
}
