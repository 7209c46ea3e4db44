package ports

import "context"

// RateLimiter decides whether another attempt identified by key is allowed
// within the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
