// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
)

// minCooldown is used when the upstream does not advise a wait.
const minCooldown = time.Second

// CooldownChecker is implemented by policies that remember an exhausted budget.
type CooldownChecker interface {
	Cooldown(ctx context.Context) (time.Duration, error)
}

// CooldownPolicy aborts on an exhausted budget and stores the advised wait in Redis,
// so that every crawler replica refuses new fetches until it expires.
type CooldownPolicy struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewCooldownPolicy constructs a [CooldownPolicy] on the shared cooldown key.
func NewCooldownPolicy(client *redis.Client, logger *slog.Logger) *CooldownPolicy {
	return &CooldownPolicy{client: client, key: constants.RedisKeyCooldown, logger: logger}
}

// OnLimitReached records the cooldown and aborts.
func (policy *CooldownPolicy) OnLimitReached(ctx context.Context, retryAfter time.Duration) Decision {
	ttl := max(retryAfter, minCooldown)
	until := time.Now().Add(ttl).Unix()

	if err := policy.client.Set(ctx, policy.key, strconv.FormatInt(until, 10), ttl).Err(); err != nil {
		// The fetch is aborted either way; only the shared memory of it is lost.
		policy.logger.Warn("cooldown_record_failed", slog.Any("error", err))
	}

	policy.logger.Info("cooldown_started", slog.Duration("retry_after", ttl))
	return DecisionAbort
}

// Cooldown returns the remaining cooldown, or zero when none is active.
func (policy *CooldownPolicy) Cooldown(ctx context.Context) (time.Duration, error) {
	ttl, err := policy.client.PTTL(ctx, policy.key).Result()
	if err != nil {
		return 0, err
	}

	// -2: no key, -1: no expiry (never written by this policy).
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
