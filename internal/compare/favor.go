package compare

import "github.com/cory-johannsen/hoopstats/internal/stats"

// Highlight records which column of a two-column display is marked better
// for one statistic. At most one of the two is set.
type Highlight struct {
	Player1 bool `json:"player_1"`
	Player2 bool `json:"player_2"`
}

// Highlights maps a stats field key to its Highlight.
type Highlights map[string]Highlight

// FavorValue applies the favorability rule to one differential: player 1 is
// highlighted when it is positive, player 2 when it is negative, neither at
// zero.
//
// Higher is treated as better for every statistic, turnovers and fouls
// included.
func FavorValue(diff float64) Highlight {
	return Highlight{Player1: diff > 0, Player2: diff < 0}
}

// Favor applies FavorValue to every field of a differential.
func Favor(diff stats.StatBlock) Highlights {
	h := make(Highlights, len(stats.Fields))
	for _, f := range stats.Fields {
		h[f.Key] = FavorValue(f.Get(diff))
	}
	return h
}
