package service

import (
	"context"
	"errors"
	"io"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/kv"
	"lexi-leaderboard/internal/repository"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fixture struct {
	svc   *LeaderboardService
	store *kv.MemoryStore
	now   time.Time
}

func newFixture() *fixture {
	f := &fixture{store: kv.NewMemoryStore(), now: time.UnixMilli(1_700_000_000_000)}
	f.store.WithClock(func() time.Time { return f.now })

	logger := zerolog.New(io.Discard)
	f.svc = NewLeaderboardService(
		repository.NewScoreRepository(f.store, logger),
		repository.NewRateLimitRepository(f.store, logger),
		logger,
	).WithClock(func() time.Time { return f.now })
	return f
}

func submission(name string, score float64) domain.Submission {
	return domain.Submission{Game: "lexi-blaster", Mode: "en_en", Level: "A1", Name: name, Score: score}
}

func expectCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	got, ok := domain.CodeOf(err)
	if !ok || got != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestSubmitThenTopRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, submission("Ada", 1500), "1.2.3.4")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Rank == nil || *res.Rank != 1 {
		t.Fatalf("expected rank 1, got %v", res.Rank)
	}
	if *res.Entry.Timestamp != f.now.UnixMilli() {
		t.Fatalf("expected server timestamp, got %d", *res.Entry.Timestamp)
	}

	top, err := f.svc.Top(ctx, "lexi-blaster", "en_en", "A1", 20)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Ada" || top[0].Score != 1500 || top[0].Rank != 1 {
		t.Fatalf("unexpected top: %+v", top)
	}
}

func TestSubmitRankReflectsTieBreak(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Submit(ctx, submission("First", 300), "a")
	f.now = f.now.Add(time.Second)
	res, err := f.svc.Submit(ctx, submission("Second", 300), "b")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Rank == nil || *res.Rank != 2 {
		t.Fatalf("later equal score should rank 2, got %v", res.Rank)
	}
}

func TestSubmitRejectsNonPositiveScoreWithoutWriting(t *testing.T) {
	f := newFixture()
	for _, score := range []float64{0, -1, 0.4} {
		_, err := f.svc.Submit(context.Background(), submission("Ada", score), "ip")
		expectCode(t, err, domain.CodeScoreRequired)
	}
	if f.store.Len() != 0 {
		t.Fatalf("store was mutated by rejected submissions")
	}
}

func TestSubmitRejectsEmptyName(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"", "   ", "\x00\x01\x1f"} {
		_, err := f.svc.Submit(context.Background(), submission(name, 10), "ip")
		expectCode(t, err, domain.CodeNameRequired)
	}
	if f.store.Len() != 0 {
		t.Fatalf("store was mutated by rejected submissions")
	}
}

func TestSubmitValidatesContextFirst(t *testing.T) {
	f := newFixture()
	sub := submission("", 0)
	sub.Level = "Z9"
	_, err := f.svc.Submit(context.Background(), sub, "ip")
	expectCode(t, err, domain.CodeInvalidLevel)
}

func TestSubmitRateLimited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Submit(ctx, submission("Ada", 10), "ip"); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}
	if _, err := f.svc.Submit(ctx, submission("Ada", 10), "ip"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}

	f.now = f.now.Add(f.svc.RetryAfter())
	if _, err := f.svc.Submit(ctx, submission("Ada", 10), "ip"); err != nil {
		t.Fatalf("submission after window: %v", err)
	}

	top, _ := f.svc.Top(ctx, "lexi-blaster", "en_en", "A1", 100)
	if len(top) != 4 {
		t.Fatalf("expected 4 stored entries, got %d", len(top))
	}
}

func TestTopLimitsResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.svc.Submit(ctx, submission("P", float64(10+i)), string(rune('a'+i)))
	}

	top, err := f.svc.Top(ctx, "lexi-blaster", "en_en", "A1", 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Score != 14 || top[1].Score != 13 {
		t.Fatalf("unexpected top: %+v", top)
	}
}

func TestTopInvalidModeSkipsStore(t *testing.T) {
	f := newFixture()
	f.svc.scores = repository.NewScoreRepository(nil, zerolog.New(io.Discard))

	_, err := f.svc.Top(context.Background(), "lexi-blaster", "xx", "A1", 20)
	expectCode(t, err, domain.CodeInvalidMode)
}
