package domain

import "testing"

func ts(v int64) *int64 { return &v }

func TestRankTieBreaksOnEarlierTimestamp(t *testing.T) {
	entries := []Entry{
		{ID: "a", Name: "A", Score: 300, Timestamp: ts(2000)},
		{ID: "b", Name: "B", Score: 300, Timestamp: ts(1000)},
		{ID: "c", Name: "C", Score: 500, Timestamp: ts(3000)},
	}

	ranked := Rank(entries)

	got := []string{ranked[0].Name, ranked[1].Name, ranked[2].Name}
	want := []string{"C", "B", "A"}
	for i := range want {
		if got[i] != want[i] || ranked[i].Rank != i+1 {
			t.Fatalf("position %d: got %s(%d), want %s(%d)", i, got[i], ranked[i].Rank, want[i], i+1)
		}
	}
	if entries[0].ID != "a" {
		t.Fatalf("input slice was reordered")
	}
}

func TestRankMissingTimestampSortsLast(t *testing.T) {
	ranked := Rank([]Entry{
		{ID: "legacy", Score: 100},
		{ID: "new", Score: 100, Timestamp: ts(5)},
	})
	if ranked[0].ID != "new" || ranked[1].ID != "legacy" {
		t.Fatalf("expected timestamped entry first, got %s then %s", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankIsDense(t *testing.T) {
	var entries []Entry
	for i := 0; i < 50; i++ {
		entries = append(entries, Entry{ID: string(rune('a' + i%26)), Score: (i * 37) % 11, Timestamp: ts(int64(i))})
	}
	ranked := Rank(entries)
	for i, r := range ranked {
		if r.Rank != i+1 {
			t.Fatalf("rank at %d = %d", i, r.Rank)
		}
		if i == 0 {
			continue
		}
		prev := ranked[i-1]
		if prev.Score < r.Score || (prev.Score == r.Score && *prev.Timestamp > *r.Timestamp) {
			t.Fatalf("order violated between %d and %d", i-1, i)
		}
	}
}

func TestRankOf(t *testing.T) {
	ranked := Rank([]Entry{{ID: "x", Score: 1}, {ID: "y", Score: 2}})
	if r := RankOf(ranked, "x"); r == nil || *r != 2 {
		t.Fatalf("expected rank 2 for x, got %v", r)
	}
	if r := RankOf(ranked, "missing"); r != nil {
		t.Fatalf("expected nil rank, got %d", *r)
	}
}
