package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// StatBlockGen generates StatBlocks with arbitrary finite field values. The
// blocks need not satisfy the shooting invariants.
func StatBlockGen() *rapid.Generator[stats.StatBlock] {
	return rapid.Custom(func(t *rapid.T) stats.StatBlock {
		var b stats.StatBlock
		for _, f := range stats.Fields {
			f.Set(&b, rapid.Float64Range(-1e6, 1e6).Draw(t, f.Key))
		}
		return b
	})
}

// SeasonTotalsGen generates well-formed season totals: non-negative counts,
// makes never exceeding attempts, and percentages left for derivation.
func SeasonTotalsGen() *rapid.Generator[stats.StatBlock] {
	return rapid.Custom(func(t *rapid.T) stats.StatBlock {
		gp := float64(rapid.IntRange(1, 82).Draw(t, "gp"))
		fga := float64(rapid.IntRange(0, 2000).Draw(t, "fga"))
		fgm := float64(rapid.IntRange(0, int(fga)).Draw(t, "fgm"))
		fg3a := float64(rapid.IntRange(0, int(fga)).Draw(t, "fg3a"))
		fg3m := float64(rapid.IntRange(0, int(min(fg3a, fgm))).Draw(t, "fg3m"))
		fta := float64(rapid.IntRange(0, 900).Draw(t, "fta"))
		ftm := float64(rapid.IntRange(0, int(fta)).Draw(t, "ftm"))
		oreb := float64(rapid.IntRange(0, 400).Draw(t, "oreb"))
		dreb := float64(rapid.IntRange(0, 900).Draw(t, "dreb"))

		return stats.StatBlock{
			Minutes: float64(rapid.IntRange(0, 3400).Draw(t, "min")),
			FGM:     fgm,
			FGA:     fga,
			FG3M:    fg3m,
			FG3A:    fg3a,
			FTM:     ftm,
			FTA:     fta,
			OReb:    oreb,
			DReb:    dreb,
			Reb:     oreb + dreb,
			Ast:     float64(rapid.IntRange(0, 900).Draw(t, "ast")),
			Blk:     float64(rapid.IntRange(0, 300).Draw(t, "blk")),
			Stl:     float64(rapid.IntRange(0, 250).Draw(t, "stl")),
			Pts:     2*(fgm-fg3m) + 3*fg3m + ftm,
			PF:      float64(rapid.IntRange(0, 330).Draw(t, "pf")),
			Tov:     float64(rapid.IntRange(0, 400).Draw(t, "tov")),
			GP:      gp,
			GS:      float64(rapid.IntRange(0, int(gp)).Draw(t, "gs")),
		}.WithPercentages()
	})
}

// RecordGen generates a valid PlayerStatRecord with between one and five
// consecutive regular seasons starting at 2015-16 and an optional postseason.
func RecordGen(playerID int64) *rapid.Generator[*stats.PlayerStatRecord] {
	return rapid.Custom(func(t *rapid.T) *stats.PlayerStatRecord {
		n := rapid.IntRange(1, 5).Draw(t, "seasons")
		regular := make(map[string]stats.StatBlock, n)
		for i := 0; i < n; i++ {
			regular[SeasonLabel(2015+i)] = SeasonTotalsGen().Draw(t, "regular")
		}
		rec := &stats.PlayerStatRecord{
			PlayerID: playerID,
			Name:     fmt.Sprintf("Player %d", playerID),
			Headshot: stats.HeadshotURL(playerID),
			Active:   rapid.Bool().Draw(t, "active"),
			Regular:  stats.NewSubset(regular),
		}
		if rapid.Bool().Draw(t, "has_postseason") {
			post := stats.NewSubset(map[string]stats.StatBlock{
				SeasonLabel(2015): SeasonTotalsGen().Draw(t, "postseason"),
			})
			rec.Postseason = &post
		}
		return rec
	})
}

// SeasonLabel formats the season starting in year as "2019-20".
func SeasonLabel(year int) string {
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// NewRecord builds a record from regular-season totals keyed by label.
func NewRecord(playerID int64, name string, regular map[string]stats.StatBlock) *stats.PlayerStatRecord {
	return &stats.PlayerStatRecord{
		PlayerID: playerID,
		Name:     name,
		Headshot: stats.HeadshotURL(playerID),
		Active:   true,
		Regular:  stats.NewSubset(regular),
	}
}
