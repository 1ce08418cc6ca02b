package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	c      *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(c *redis.Client, prefix string, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{c: c, prefix: prefix, limit: limit, window: window}
}

// Allow делает INCR по ключу и ставит TTL, только если ключ создан этим INCR:
// окно фиксированное и не продлевается каждым запросом.
// Возвращает (allowed, currentCount).
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	key = rl.prefix + key
	n, err := rl.c.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	if n == 1 {
		if err := rl.c.Expire(ctx, key, rl.window).Err(); err != nil {
			return false, 0, errors.Wrap(err, "redis ratelimit expire")
		}
	}
	return n <= rl.limit, n, nil
}
