package domain

import (
	"lexi-leaderboard/internal/constants"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// ValidateContext normalizes the raw triple. The first failing field wins,
// checked in the order game, mode, level.
func ValidateContext(game, mode, level string) (Context, error) {
	g := strings.ToLower(strings.TrimSpace(game))
	if !lo.Contains(AllowedGames, g) {
		return Context{}, invalid(CodeInvalidGame)
	}
	m := strings.ToLower(strings.TrimSpace(mode))
	if !lo.Contains(AllowedModes, m) {
		return Context{}, invalid(CodeInvalidMode)
	}
	l := strings.ToUpper(strings.TrimSpace(level))
	if !lo.Contains(AllowedLevels, l) {
		return Context{}, invalid(CodeInvalidLevel)
	}
	return Context{Game: g, Mode: m, Level: l}, nil
}

func isControl(r rune) bool {
	return r <= 0x1F || r == 0x7F
}

// SanitizeName strips control characters, trims, collapses whitespace runs
// and truncates to MaxNameLength code points. An empty result means the
// name is unusable.
func SanitizeName(raw string) string {
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}
	cleaned := strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if utf8.RuneCountInString(cleaned) > constants.MaxNameLength {
		cleaned = string([]rune(cleaned)[:constants.MaxNameLength])
	}
	return cleaned
}

// ClampScore floors v and clamps it into [0, MaxScore]. Non-finite and
// negative values become 0.
func ClampScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f := math.Floor(v)
	if f < 0 {
		return 0
	}
	if f > constants.MaxScore {
		return constants.MaxScore
	}
	return int(f)
}

// ClampLimit maps a raw numeric limit to [1, MaxLimit]; anything missing,
// non-numeric or non-positive selects DefaultLimit.
func ClampLimit(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return constants.DefaultLimit
	}
	if v > constants.MaxLimit {
		return constants.MaxLimit
	}
	return lo.Clamp(int(math.Floor(v)), 1, constants.MaxLimit)
}
