// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
	"github.com/taibuivan/yomira-crawler/pkg/uuid"
)

// ChapterLock serialises fetches of the same chapter.
type ChapterLock interface {
	// TryAcquire returns ok=false without error when another fetch holds the lock.
	TryAcquire(ctx context.Context, chapterID string) (release func(context.Context) error, ok bool, err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisChapterLock is a [ChapterLock] backed by SET NX with an expiry.
type RedisChapterLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisChapterLock constructs a lock whose keys expire after ttl.
func NewRedisChapterLock(client *redis.Client, ttl time.Duration) *RedisChapterLock {
	return &RedisChapterLock{client: client, ttl: ttl}
}

// TryAcquire implements [ChapterLock].
func (lock *RedisChapterLock) TryAcquire(ctx context.Context, chapterID string) (func(context.Context) error, bool, error) {
	key := constants.RedisPrefixChapterLock + chapterID
	token := uuid.New()

	ok, err := lock.client.SetNX(ctx, key, token, lock.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: acquire chapter lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, lock.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("redis: release chapter lock: %w", err)
		}
		return nil
	}

	return release, true, nil
}
