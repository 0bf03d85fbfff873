package repository

import (
	"context"
	"fmt"
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/constants"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/kv"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type RateLimitRepository struct {
	store  kv.Store
	logger zerolog.Logger
	max    int
	window time.Duration
}

func NewRateLimitRepository(store kv.Store, logger zerolog.Logger) *RateLimitRepository {
	return &RateLimitRepository{
		store:  store,
		logger: logger.With().Str("component", "rate_limit_repository").Logger(),
		max:    constants.RateLimitMax,
		window: constants.RateLimitWindow,
	}
}

// ProvideRateLimitRepository leaves the limiter unbound when
// RATE_LIMIT_ENABLED is false; an unbound limiter allows everything.
func ProvideRateLimitRepository(cfg *config.Config, store kv.Store, logger zerolog.Logger) *RateLimitRepository {
	if !cfg.RateLimitEnabled {
		logger.Warn().Msg("rate limiting disabled")
		store = nil
	}
	return NewRateLimitRepository(store, logger)
}

func RateLimitKey(c domain.Context, clientID string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", constants.RateLimitKeyPrefix, c.Game, c.Mode, c.Level, clientID)
}

func (r *RateLimitRepository) Window() time.Duration {
	if r == nil {
		return constants.RateLimitWindow
	}
	return r.window
}

// CheckAndIncrement reports whether another submission fits in the current
// window. A refused call leaves the bucket untouched; an accepted one
// rewrites it with a fresh ttl, which is what ends the window.
func (r *RateLimitRepository) CheckAndIncrement(ctx context.Context, c domain.Context, clientID string) (bool, error) {
	if r == nil || r.store == nil {
		return true, nil
	}

	key := RateLimitKey(c, clientID)
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit bucket: %w", err)
	}

	count := 0.0
	if found {
		count, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(count) || math.IsInf(count, 0) || count < 0 {
			count = 0
		}
	}

	if count >= float64(r.max) {
		r.logger.Debug().Str("key", key).Float64("count", count).Msg("rate limit reached")
		return false, nil
	}

	next := strconv.Itoa(int(count) + 1)
	if err := r.store.Put(ctx, key, next, r.window); err != nil {
		return false, fmt.Errorf("failed to write rate limit bucket: %w", err)
	}
	return true, nil
}
