package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// CacheBackend resolves option data from Redis. KeyPattern must contain
// `{identifier}`; the stored value is expected to be a JSON document, with a
// plain string falling back to a single "value" field.
type CacheBackend struct {
	client *redis.Client
}

func NewCacheBackend(client *redis.Client) *CacheBackend {
	return &CacheBackend{
		client: client,
	}
}

func (b *CacheBackend) Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error) {
	if config.KeyPattern == "" {
		return nil, fmt.Errorf("key_pattern is required for cache backend")
	}

	key := strings.ReplaceAll(config.KeyPattern, "{identifier}", identifier)

	val, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cache key not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return map[string]interface{}{
			"value": val,
		}, nil
	}

	return result, nil
}
