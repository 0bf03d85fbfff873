package domain

import "fmt"

const DefaultGame = "lexi-blaster"

var (
	AllowedGames  = []string{DefaultGame}
	AllowedModes  = []string{"en_en", "jp_en", "en_jp"}
	AllowedLevels = []string{"A1", "A2", "A3", "B1", "B2", "B3", "C1", "C2", "C3"}
)

// Context partitions the leaderboards. Only ValidateContext produces values
// that are safe to use as storage keys.
type Context struct {
	Game  string
	Mode  string
	Level string
}

func (c Context) String() string {
	return fmt.Sprintf("%s:%s:%s", c.Game, c.Mode, c.Level)
}

type Entry struct {
	ID        string
	Name      string
	Score     int
	Timestamp *int64 // ms since epoch, nil for legacy rows
}

type RankedEntry struct {
	Entry
	Rank int
}

type SubmitResult struct {
	Entry Entry
	Rank  *int
}
