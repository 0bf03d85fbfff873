package domain

import (
	"math"
	"sort"
)

func timestampOrLast(e Entry) int64 {
	if e.Timestamp == nil {
		return math.MaxInt64
	}
	return *e.Timestamp
}

// Rank sorts a copy of entries by score descending, then by earliest
// timestamp, and assigns dense ranks starting at 1. The input is not
// modified.
func Rank(entries []Entry) []RankedEntry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return timestampOrLast(sorted[i]) < timestampOrLast(sorted[j])
	})

	ranked := make([]RankedEntry, len(sorted))
	for i, e := range sorted {
		ranked[i] = RankedEntry{Entry: e, Rank: i + 1}
	}
	return ranked
}

// RankOf returns the rank of the entry with the given id, or nil.
func RankOf(ranked []RankedEntry, id string) *int {
	for _, r := range ranked {
		if r.ID == id {
			rank := r.Rank
			return &rank
		}
	}
	return nil
}
