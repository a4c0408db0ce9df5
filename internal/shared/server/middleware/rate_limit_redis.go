package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "createkit:ratelimit:"

// RedisRateLimiter is a sliding-window limiter shared across instances.
// A rule admits Burst requests per Burst/Rate seconds.
type RedisRateLimiter struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisRateLimiter(client redis.Cmdable, now func() time.Time) *RedisRateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisRateLimiter{client: client, now: now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0, nil
	}
	window := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	fullKey := rateLimitKeyPrefix + key
	now := l.now().UnixNano()
	windowStart := now - window.Nanoseconds()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, fullKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, fullKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if countCmd.Val() >= int64(rule.Burst) {
		retryAfter := window
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			retryAfter = time.Duration(int64(oldest[0].Score) + window.Nanoseconds() - now)
		}
		return false, retryAfter, nil
	}

	pipe = l.client.Pipeline()
	pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d", now)})
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	return true, 0, nil
}
