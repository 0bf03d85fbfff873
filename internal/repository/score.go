package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"lexi-leaderboard/internal/constants"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/kv"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ScoreRepository struct {
	store  kv.Store
	logger zerolog.Logger
	limit  int
}

func NewScoreRepository(store kv.Store, logger zerolog.Logger) *ScoreRepository {
	return &ScoreRepository{
		store:  store,
		logger: logger.With().Str("component", "score_repository").Logger(),
		limit:  constants.StorageLimit,
	}
}

// WithLimit overrides the retention cap.
func (r *ScoreRepository) WithLimit(limit int) *ScoreRepository {
	r.limit = limit
	return r
}

func ScoreKey(c domain.Context) string {
	return fmt.Sprintf("%s:%s:%s:%s", constants.ScoreKeyPrefix, c.Game, c.Mode, c.Level)
}

type storedEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp *int64 `json:"timestamp"`
}

func (r *ScoreRepository) requireStore() (kv.Store, error) {
	if r == nil || r.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	return r.store, nil
}

// Read never fails on bad data: a missing, corrupt or non-array blob reads
// as an empty list and every element is re-sanitized.
func (r *ScoreRepository) Read(ctx context.Context, c domain.Context) ([]domain.Entry, error) {
	store, err := r.requireStore()
	if err != nil {
		return nil, err
	}

	raw, found, err := store.Get(ctx, ScoreKey(c))
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return r.decode(c, raw, found), nil
}

// Append adds entry at the end, evicts the oldest entries beyond the cap and
// writes the list back. Stores that support compare-and-swap get a bounded
// retry on concurrent modification; others are last-writer-wins.
func (r *ScoreRepository) Append(ctx context.Context, c domain.Context, entry domain.Entry) ([]domain.Entry, error) {
	store, err := r.requireStore()
	if err != nil {
		return nil, err
	}

	key := ScoreKey(c)
	swapper, canSwap := store.(kv.Swapper)

	for attempt := 1; ; attempt++ {
		raw, found, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read leaderboard: %w", err)
		}

		updated := appendCapped(r.decode(c, raw, found), entry, r.limit)
		encoded, err := encodeEntries(updated)
		if err != nil {
			return nil, fmt.Errorf("failed to encode leaderboard: %w", err)
		}

		if !canSwap {
			if err := store.Put(ctx, key, encoded, 0); err != nil {
				return nil, fmt.Errorf("failed to write leaderboard: %w", err)
			}
			return updated, nil
		}

		swapped, err := swapper.CompareAndSwap(ctx, key, raw, found, encoded, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to write leaderboard: %w", err)
		}
		if swapped {
			return updated, nil
		}

		r.logger.Debug().
			Str("context", c.String()).
			Int("attempt", attempt).
			Msg("leaderboard changed during append, retrying")

		if attempt >= constants.AppendMaxAttempts {
			return nil, fmt.Errorf("failed to append after %d attempts: %w", attempt, domain.ErrAppendConflict)
		}
	}
}

func appendCapped(existing []domain.Entry, entry domain.Entry, limit int) []domain.Entry {
	next := make([]domain.Entry, 0, len(existing)+1)
	next = append(next, existing...)
	next = append(next, entry)
	if limit > 0 && len(next) > limit {
		next = next[len(next)-limit:]
	}
	return next
}

func encodeEntries(entries []domain.Entry) (string, error) {
	stored := make([]storedEntry, len(entries))
	for i, e := range entries {
		stored[i] = storedEntry{ID: e.ID, Name: e.Name, Score: e.Score, Timestamp: e.Timestamp}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *ScoreRepository) decode(c domain.Context, raw string, found bool) []domain.Entry {
	if !found || raw == "" {
		return []domain.Entry{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.logger.Warn().Err(err).Str("context", c.String()).Msg("discarding unreadable leaderboard data")
		return []domain.Entry{}
	}

	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, decodeEntry(item))
	}
	return entries
}

func decodeEntry(item json.RawMessage) domain.Entry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		fields = nil
	}

	id := domain.CoerceString(fields["id"])
	if id == "" {
		id = gonanoid.Must()
	}

	return domain.Entry{
		ID:        id,
		Name:      domain.SanitizeName(domain.CoerceString(fields["name"])),
		Score:     domain.ClampScore(domain.CoerceNumber(fields["score"])),
		Timestamp: domain.CoerceTimestamp(fields["timestamp"]),
	}
}
