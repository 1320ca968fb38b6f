package stats

import "fmt"

// Kind classifies a StatBlock field for arithmetic and display purposes.
type Kind int

const (
	// Counting fields accumulate across games and are averaged per game.
	Counting Kind = iota
	// Percentage fields are ratios derived from makes and attempts.
	Percentage
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Counting:
		return "counting"
	case Percentage:
		return "percentage"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field describes one StatBlock field: its wire key, display label, kind and
// accessors.
type Field struct {
	Key   string
	Label string
	Kind  Kind
	Get   func(StatBlock) float64
	Set   func(*StatBlock, float64)
}

// Fields lists every StatBlock field in display order.
var Fields = []Field{
	{"min", "MIN", Counting, func(b StatBlock) float64 { return b.Minutes }, func(b *StatBlock, v float64) { b.Minutes = v }},
	{"pts", "PTS", Counting, func(b StatBlock) float64 { return b.Pts }, func(b *StatBlock, v float64) { b.Pts = v }},
	{"reb", "REB", Counting, func(b StatBlock) float64 { return b.Reb }, func(b *StatBlock, v float64) { b.Reb = v }},
	{"oreb", "OREB", Counting, func(b StatBlock) float64 { return b.OReb }, func(b *StatBlock, v float64) { b.OReb = v }},
	{"dreb", "DREB", Counting, func(b StatBlock) float64 { return b.DReb }, func(b *StatBlock, v float64) { b.DReb = v }},
	{"ast", "AST", Counting, func(b StatBlock) float64 { return b.Ast }, func(b *StatBlock, v float64) { b.Ast = v }},
	{"stl", "STL", Counting, func(b StatBlock) float64 { return b.Stl }, func(b *StatBlock, v float64) { b.Stl = v }},
	{"blk", "BLK", Counting, func(b StatBlock) float64 { return b.Blk }, func(b *StatBlock, v float64) { b.Blk = v }},
	{"tov", "TOV", Counting, func(b StatBlock) float64 { return b.Tov }, func(b *StatBlock, v float64) { b.Tov = v }},
	{"pf", "PF", Counting, func(b StatBlock) float64 { return b.PF }, func(b *StatBlock, v float64) { b.PF = v }},
	{"fgm", "FGM", Counting, func(b StatBlock) float64 { return b.FGM }, func(b *StatBlock, v float64) { b.FGM = v }},
	{"fga", "FGA", Counting, func(b StatBlock) float64 { return b.FGA }, func(b *StatBlock, v float64) { b.FGA = v }},
	{"fg_pct", "FG%", Percentage, func(b StatBlock) float64 { return b.FGPct }, func(b *StatBlock, v float64) { b.FGPct = v }},
	{"fg3m", "3PM", Counting, func(b StatBlock) float64 { return b.FG3M }, func(b *StatBlock, v float64) { b.FG3M = v }},
	{"fg3a", "3PA", Counting, func(b StatBlock) float64 { return b.FG3A }, func(b *StatBlock, v float64) { b.FG3A = v }},
	{"fg3_pct", "3P%", Percentage, func(b StatBlock) float64 { return b.FG3Pct }, func(b *StatBlock, v float64) { b.FG3Pct = v }},
	{"ftm", "FTM", Counting, func(b StatBlock) float64 { return b.FTM }, func(b *StatBlock, v float64) { b.FTM = v }},
	{"fta", "FTA", Counting, func(b StatBlock) float64 { return b.FTA }, func(b *StatBlock, v float64) { b.FTA = v }},
	{"ft_pct", "FT%", Percentage, func(b StatBlock) float64 { return b.FTPct }, func(b *StatBlock, v float64) { b.FTPct = v }},
	{"efg_pct", "eFG%", Percentage, func(b StatBlock) float64 { return b.EFGPct }, func(b *StatBlock, v float64) { b.EFGPct = v }},
	{"gp", "GP", Counting, func(b StatBlock) float64 { return b.GP }, func(b *StatBlock, v float64) { b.GP = v }},
	{"gs", "GS", Counting, func(b StatBlock) float64 { return b.GS }, func(b *StatBlock, v float64) { b.GS = v }},
}

// FieldByKey looks up a field by its wire key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func mustField(key string) Field {
	f, ok := FieldByKey(key)
	if !ok {
		panic("stats: unknown field " + key)
	}
	return f
}

// ToMap returns the block keyed by field key.
func (b StatBlock) ToMap() map[string]float64 {
	m := make(map[string]float64, len(Fields))
	for _, f := range Fields {
		m[f.Key] = f.Get(b)
	}
	return m
}

// FromMap builds a StatBlock from values keyed by field key. Unknown keys are
// reported as an error; missing keys are left at zero.
func FromMap(m map[string]float64) (StatBlock, error) {
	var b StatBlock
	for k, v := range m {
		f, ok := FieldByKey(k)
		if !ok {
			return StatBlock{}, fmt.Errorf("unknown stat field %q", k)
		}
		f.Set(&b, v)
	}
	return b, nil
}
