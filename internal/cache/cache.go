package cache

import (
	"context"
	"time"
)

// BytesCache: простой KV-кэш. Ошибки кэша вызывающий код трактует как промах.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Limiter считает запросы по ключу в окне фиксированной длины.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, error)
}
