// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

// RedisSearchCache implements [SearchCache] with JSON values under a hashed key.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSearchCache constructs a cache whose entries expire after ttl.
func NewRedisSearchCache(client *redis.Client, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{client: client, ttl: ttl}
}

/*
Get returns the cached results for query.

Returns:
  - []mangadex.MangaSummary: Cached hits
  - bool: Whether the entry exists
  - error: Connectivity or decoding errors
*/
func (cache *RedisSearchCache) Get(context context.Context, query mangadex.SearchQuery) ([]mangadex.MangaSummary, bool, error) {
	payload, err := cache.client.Get(context, SearchKey(query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_search_cache_get_failed: %w", err)
	}

	var results []mangadex.MangaSummary
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("redis_search_cache_decode_failed: %w", err)
	}

	return results, true, nil
}

// Set stores results for query with the configured TTL.
func (cache *RedisSearchCache) Set(context context.Context, query mangadex.SearchQuery, results []mangadex.MangaSummary) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("redis_search_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, SearchKey(query), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_search_cache_set_failed: %w", err)
	}

	return nil
}

// SearchKey derives the cache key of a query. Tag order and title case do not matter.
func SearchKey(query mangadex.SearchQuery) string {
	included := slices.Sorted(slices.Values(query.IncludedTags))
	excluded := slices.Sorted(slices.Values(query.ExcludedTags))

	canonical := fmt.Sprintf("%s\x00%s\x00%s\x00%d",
		strings.ToLower(strings.TrimSpace(query.Title)),
		strings.Join(included, ","),
		strings.Join(excluded, ","),
		query.Limit,
	)

	sum := sha256.Sum256([]byte(canonical))
	return constants.RedisPrefixSearch + hex.EncodeToString(sum[:])
}
