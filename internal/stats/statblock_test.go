package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hoopstats/internal/stats"
	"github.com/cory-johannsen/hoopstats/internal/testutil"
)

func sampleTotals() stats.StatBlock {
	return stats.StatBlock{
		Minutes: 2316, FGM: 643, FGA: 1303, FG3M: 148, FG3A: 425,
		FTM: 264, FTA: 381, OReb: 66, DReb: 459, Reb: 525,
		Ast: 684, Blk: 36, Stl: 78, Pts: 1698, PF: 118, Tov: 261,
		GP: 67, GS: 67,
	}.WithPercentages()
}

func TestStatBlock_PerGame(t *testing.T) {
	pg := sampleTotals().PerGame()

	assert.InDelta(t, 1698.0/67, pg.Pts, 1e-12)
	assert.InDelta(t, 525.0/67, pg.Reb, 1e-12)
	assert.Equal(t, 67.0, pg.GP, "games played must not be divided")
	assert.Equal(t, 67.0, pg.GS, "games started must not be divided")
	assert.Equal(t, sampleTotals().FGPct, pg.FGPct, "percentages must carry over")
}

func TestStatBlock_PerGame_ZeroGames(t *testing.T) {
	b := stats.StatBlock{Pts: 10, Reb: 4}
	pg := b.PerGame()
	assert.Zero(t, pg.Pts)
	assert.Zero(t, pg.Reb)
}

func TestStatBlock_WithPercentages(t *testing.T) {
	b := stats.StatBlock{FGM: 5, FGA: 10, FG3M: 2, FG3A: 4, FTM: 3, FTA: 4}.WithPercentages()
	assert.InDelta(t, 0.5, b.FGPct, 1e-12)
	assert.InDelta(t, 0.5, b.FG3Pct, 1e-12)
	assert.InDelta(t, 0.75, b.FTPct, 1e-12)
	assert.InDelta(t, 0.6, b.EFGPct, 1e-12)

	empty := stats.StatBlock{}.WithPercentages()
	assert.Zero(t, empty.FGPct, "no attempts means zero percentage")
	assert.Zero(t, empty.EFGPct)
}

func TestSum(t *testing.T) {
	a := stats.StatBlock{Pts: 10, FGM: 4, FGA: 8, GP: 1}
	b := stats.StatBlock{Pts: 20, FGM: 8, FGA: 12, GP: 1}
	s := stats.Sum(a, b)

	assert.Equal(t, 30.0, s.Pts)
	assert.Equal(t, 2.0, s.GP)
	assert.InDelta(t, 0.6, s.FGPct, 1e-12, "percentage is recomputed from summed makes/attempts")
	assert.Equal(t, stats.StatBlock{}, stats.Sum())
}

func TestStatBlock_Validate(t *testing.T) {
	require.NoError(t, sampleTotals().Validate())

	b := sampleTotals()
	b.FGM = b.FGA + 1
	err := b.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, stats.ErrInvalidRecord))
	assert.Contains(t, err.Error(), "fgm")

	b = sampleTotals()
	b.FTPct = 0.1
	err = b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ft_pct")

	b = stats.StatBlock{FG3Pct: 0.4}
	assert.Error(t, b.Validate(), "percentage without attempts must be zero")

	b = sampleTotals()
	b.FGPct = math.NaN()
	assert.Error(t, b.Validate())
}

func TestStatBlock_Validate_FiniteNonNegative(t *testing.T) {
	tests := []struct {
		name string
		edit func(*stats.StatBlock)
		want string
	}{
		{"infinite attempts and makes", func(b *stats.StatBlock) { b.FGM, b.FGA = math.Inf(1), math.Inf(1) }, "fga is not finite"},
		{"negative infinity points", func(b *stats.StatBlock) { b.Pts = math.Inf(-1) }, "pts is not finite"},
		{"negative rebounds", func(b *stats.StatBlock) { b.Reb = -3 }, "reb is negative"},
		{"negative games", func(b *stats.StatBlock) { b.GP = -1 }, "gp is negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleTotals()
			tt.edit(&b)
			err := b.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, stats.ErrInvalidRecord)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStatBlock_Validate_RoundedPercentage(t *testing.T) {
	b := sampleTotals()
	b.FGPct = math.Round(b.FGPct*1000) / 1000
	assert.NoError(t, b.Validate(), "three-decimal upstream rounding must be tolerated")
}

func TestMapRoundTrip(t *testing.T) {
	m := sampleTotals().ToMap()
	assert.Len(t, m, len(stats.Fields))

	b, err := stats.FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, sampleTotals(), b)

	_, err = stats.FromMap(map[string]float64{"dunks": 1})
	assert.Error(t, err)
}

func TestFields_KeysUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range stats.Fields {
		assert.False(t, seen[f.Key], "duplicate field key %q", f.Key)
		seen[f.Key] = true
	}
	_, ok := stats.FieldByKey("tov")
	assert.True(t, ok)
	_, ok = stats.FieldByKey("nope")
	assert.False(t, ok)
}

func TestFields_SetGetProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Float64Range(-1e9, 1e9).Draw(rt, "v")
		for _, f := range stats.Fields {
			var b stats.StatBlock
			f.Set(&b, v)
			if f.Get(b) != v {
				rt.Fatalf("field %s: set %g, got %g", f.Key, v, f.Get(b))
			}
		}
	})
}

func TestSeasonTotals_ValidProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := testutil.SeasonTotalsGen().Draw(rt, "totals")
		if err := b.Validate(); err != nil {
			rt.Fatalf("generated totals invalid: %v", err)
		}
		if err := b.PerGame().Validate(); err != nil {
			rt.Fatalf("per-game of valid totals invalid: %v", err)
		}
	})
}
