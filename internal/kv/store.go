package kv

import (
	"context"
	"time"
)

// Store is the key-value binding the leaderboard persists into. Values are
// opaque strings; a ttl of 0 means the key never expires. Expired keys are
// reported as absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Swapper is implemented by stores that can make a write conditional on the
// value previously read. old is ignored when oldFound is false, in which case
// the key must be absent (or expired) for the swap to succeed.
type Swapper interface {
	CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string, ttl time.Duration) (bool, error)
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
