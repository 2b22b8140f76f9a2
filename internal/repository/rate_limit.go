package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter interface {
	// Allow counts one hit against key and reports whether it is within
	// limit for the current fixed window.
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
	// Reset drops the counter so the next hit opens a new window.
	Reset(ctx context.Context, key string) error
}

type rateLimiterImpl struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) RateLimiter {
	return &rateLimiterImpl{
		client: client,
	}
}

func (r *rateLimiterImpl) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// the window starts with the first hit
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= limit, nil
}

func (r *rateLimiterImpl) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit counter: %w", err)
	}
	return nil
}
