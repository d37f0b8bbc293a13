package redis

import (
	"context"
	"time"
)

// RateLimiter implements a fixed-window counter on Redis INCR/EXPIRE.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the counter for key and reports whether the caller is
// still within limit for the current window. The window starts when the
// first increment creates the key.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	// First hit in the window owns setting the expiry.
	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}
