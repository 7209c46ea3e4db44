package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key format: ratelimit:<scope>:<key>
const keyPrefix = "ratelimit"

// incrWindow bumps the counter and starts the window on the first hit, in a
// single round trip.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RateLimiter is a fixed-window attempt counter shared by every replica that
// points at the same Redis.
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit attempts per window for each key within scope.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, scope: scope, limit: limit, window: window}
}

// Allow reports whether key still has budget in the current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, l.client, []string{l.key(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return n <= int64(l.limit), nil
}

func (l *RateLimiter) key(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, l.scope, key)
}
