package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/kv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testCtx = domain.Context{Game: "lexi-blaster", Mode: "en_en", Level: "A1"}

func nopLogger() zerolog.Logger { return zerolog.New(io.Discard) }

func ts(v int64) *int64 { return &v }

func TestScoreKeyLayout(t *testing.T) {
	if got := ScoreKey(testCtx); got != "lb:v1:lexi-blaster:en_en:A1" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := RateLimitKey(testCtx, "1.2.3.4"); got != "rl:v1:lexi-blaster:en_en:A1:1.2.3.4" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestReadMissingIsEmpty(t *testing.T) {
	repo := NewScoreRepository(kv.NewMemoryStore(), nopLogger())
	entries, err := repo.Read(context.Background(), testCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %d", len(entries))
	}
}

func TestReadCorruptDataIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"x"}`, `42`, `"text"`, `null`} {
		store := kv.NewMemoryStore()
		store.Put(context.Background(), ScoreKey(testCtx), raw, 0)

		entries, err := NewScoreRepository(store, nopLogger()).Read(context.Background(), testCtx)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if len(entries) != 0 {
			t.Fatalf("%q: expected empty list, got %d", raw, len(entries))
		}
	}
}

func TestReadResanitizesEntries(t *testing.T) {
	store := kv.NewMemoryStore()
	raw := `[
		{"id":"a","name":"  Ada\u0000  Lovelace ","score":1500.7,"timestamp":1000},
		{"name":"VeryLongPlayerName","score":"2000000"},
		{"id":"c","name":7,"score":-4,"timestamp":"soon"},
		"garbage"
	]`
	store.Put(context.Background(), ScoreKey(testCtx), raw, 0)

	entries, err := NewScoreRepository(store, nopLogger()).Read(context.Background(), testCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "a" || first.Name != "Ada Lovelace" || first.Score != 1500 || first.Timestamp == nil || *first.Timestamp != 1000 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	second := entries[1]
	if second.ID == "" || second.Name != "VeryLongPlay" || second.Score != 999999 || second.Timestamp != nil {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	third := entries[2]
	if third.Name != "" || third.Score != 0 || third.Timestamp != nil {
		t.Fatalf("unexpected third entry: %+v", third)
	}
	if entries[3].ID == "" {
		t.Fatalf("expected generated id for non-object element")
	}
}

func TestAppendPersistsAndKeepsOrder(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewScoreRepository(store, nopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, testCtx, domain.Entry{ID: fmt.Sprintf("id-%d", i), Name: "P", Score: 10 - i, Timestamp: ts(int64(i))})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := repo.Read(ctx, testCtx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, e := range entries {
		if e.ID != fmt.Sprintf("id-%d", i) {
			t.Fatalf("expected insertion order, got %s at %d", e.ID, i)
		}
	}
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	repo := NewScoreRepository(kv.NewMemoryStore(), nopLogger()).WithLimit(3)
	ctx := context.Background()

	// The oldest entry has the best score; it must still be the one evicted.
	scores := []int{999, 10, 20, 30}
	var updated []domain.Entry
	for i, s := range scores {
		var err error
		updated, err = repo.Append(ctx, testCtx, domain.Entry{ID: fmt.Sprintf("id-%d", i), Score: s, Timestamp: ts(int64(i))})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if len(updated) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(updated))
	}
	for _, e := range updated {
		if e.ID == "id-0" {
			t.Fatalf("oldest entry should have been evicted")
		}
	}
	persisted, _ := repo.Read(ctx, testCtx)
	if len(persisted) != 3 || persisted[0].ID != "id-1" {
		t.Fatalf("unexpected persisted list: %+v", persisted)
	}
}

func TestAppendOverwritesCorruptData(t *testing.T) {
	store := kv.NewMemoryStore()
	store.Put(context.Background(), ScoreKey(testCtx), "{broken", 0)
	repo := NewScoreRepository(store, nopLogger())

	if _, err := repo.Append(context.Background(), testCtx, domain.Entry{ID: "x", Name: "Ada", Score: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, _ := repo.Read(context.Background(), testCtx)
	if len(entries) != 1 || entries[0].ID != "x" {
		t.Fatalf("expected clean list with one entry, got %+v", entries)
	}
}

// conflictingStore reports a lost race on every compare-and-swap.
type conflictingStore struct {
	*kv.MemoryStore
	attempts int
}

func (s *conflictingStore) CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string, ttl time.Duration) (bool, error) {
	s.attempts++
	return false, nil
}

func TestAppendGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := &conflictingStore{MemoryStore: kv.NewMemoryStore()}
	repo := NewScoreRepository(store, nopLogger())

	_, err := repo.Append(context.Background(), testCtx, domain.Entry{ID: "x", Score: 1})
	if !errors.Is(err, domain.ErrAppendConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.attempts)
	}
}

// putOnlyStore hides CompareAndSwap to exercise the last-writer-wins path.
type putOnlyStore struct {
	inner *kv.MemoryStore
}

func (s putOnlyStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, key)
}

func (s putOnlyStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.inner.Put(ctx, key, value, ttl)
}

func (s putOnlyStore) Close() error { return nil }

func TestAppendWithoutSwapper(t *testing.T) {
	repo := NewScoreRepository(putOnlyStore{inner: kv.NewMemoryStore()}, nopLogger())
	if _, err := repo.Append(context.Background(), testCtx, domain.Entry{ID: "x", Score: 5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, _ := repo.Read(context.Background(), testCtx)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}

func TestMissingStore(t *testing.T) {
	repo := NewScoreRepository(nil, nopLogger())
	if _, err := repo.Read(context.Background(), testCtx); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}
	if _, err := repo.Append(context.Background(), testCtx, domain.Entry{}); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}
}
