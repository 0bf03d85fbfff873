package repository

import (
	"context"
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/kv"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestCheckAndIncrementCapsPerWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	store := kv.NewMemoryStore().WithClock(clock.Now)
	limiter := NewRateLimitRepository(store, nopLogger())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, err := limiter.CheckAndIncrement(ctx, testCtx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("submission %d should pass, ok=%v err=%v", i, ok, err)
		}
	}

	ok, err := limiter.CheckAndIncrement(ctx, testCtx, "1.2.3.4")
	if err != nil || ok {
		t.Fatalf("4th submission should be refused, ok=%v err=%v", ok, err)
	}
	if v, _, _ := store.Get(ctx, RateLimitKey(testCtx, "1.2.3.4")); v != "3" {
		t.Fatalf("refused call must not mutate the bucket, got %q", v)
	}

	if ok, _ := limiter.CheckAndIncrement(ctx, testCtx, "5.6.7.8"); !ok {
		t.Fatalf("other clients have their own bucket")
	}

	clock.t = clock.t.Add(limiter.Window())
	if ok, _ := limiter.CheckAndIncrement(ctx, testCtx, "1.2.3.4"); !ok {
		t.Fatalf("submission after the window should pass")
	}
}

func TestCheckAndIncrementRecoversFromGarbage(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, RateLimitKey(testCtx, "ip"), "banana", time.Minute)

	ok, err := NewRateLimitRepository(store, nopLogger()).CheckAndIncrement(ctx, testCtx, "ip")
	if err != nil || !ok {
		t.Fatalf("expected pass, ok=%v err=%v", ok, err)
	}
	if v, _, _ := store.Get(ctx, RateLimitKey(testCtx, "ip")); v != "1" {
		t.Fatalf("expected counter restart at 1, got %q", v)
	}
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	store := kv.NewMemoryStore()
	limiter := ProvideRateLimitRepository(&config.Config{RateLimitEnabled: false}, store, nopLogger())

	for i := 0; i < 10; i++ {
		if ok, err := limiter.CheckAndIncrement(context.Background(), testCtx, "ip"); err != nil || !ok {
			t.Fatalf("disabled limiter refused call %d", i)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("disabled limiter must not write buckets")
	}
}
