// Package ratelimit counts login attempts per username in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:login:attempts:"

// attemptScript counts an attempt and starts the window on the first one,
// so the window is fixed rather than sliding.
var attemptScript = redis.NewScript(`
	local n = redis.call("INCR", KEYS[1])
	if n == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return n
`)

// RedisLimiter admits at most maxAttempts logins per username inside window.
// A successful login clears the count.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter creates a limiter backed by client
func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow reserves an attempt for username and reports whether it is within the limit.
// The counter is incremented before the password is checked, so concurrent
// attempts cannot all observe the same count.
func (l *RedisLimiter) Allow(ctx context.Context, username string) (bool, error) {
	n, err := attemptScript.Run(ctx, l.client, []string{keyPrefix + username}, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("reserve attempt for %s: %w", username, err)
	}
	return n <= l.maxAttempts, nil
}

// Reset clears the attempts after a successful login
func (l *RedisLimiter) Reset(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, keyPrefix+username).Err(); err != nil {
		return fmt.Errorf("reset attempts for %s: %w", username, err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
