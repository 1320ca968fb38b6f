// Package stats defines the statistical record shapes consumed by the
// comparison engine and the arithmetic that derives per-game and career
// snapshots from season totals.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRecord is returned when a StatBlock or PlayerStatRecord violates
// one of its invariants.
var ErrInvalidRecord = errors.New("invalid stat record")

// pctTolerance absorbs the three-decimal rounding applied by the upstream API.
const pctTolerance = 0.0005

// StatBlock is one statistical snapshot for a player over some period.
// Values are totals or per-game averages depending on which Split holds it.
type StatBlock struct {
	Minutes float64 `json:"min" yaml:"min"`

	FGM   float64 `json:"fgm" yaml:"fgm"`
	FGA   float64 `json:"fga" yaml:"fga"`
	FGPct float64 `json:"fg_pct" yaml:"fg_pct"`

	FG3M   float64 `json:"fg3m" yaml:"fg3m"`
	FG3A   float64 `json:"fg3a" yaml:"fg3a"`
	FG3Pct float64 `json:"fg3_pct" yaml:"fg3_pct"`

	FTM   float64 `json:"ftm" yaml:"ftm"`
	FTA   float64 `json:"fta" yaml:"fta"`
	FTPct float64 `json:"ft_pct" yaml:"ft_pct"`

	OReb float64 `json:"oreb" yaml:"oreb"`
	DReb float64 `json:"dreb" yaml:"dreb"`
	Reb  float64 `json:"reb" yaml:"reb"`

	Ast float64 `json:"ast" yaml:"ast"`
	Blk float64 `json:"blk" yaml:"blk"`
	Stl float64 `json:"stl" yaml:"stl"`
	Pts float64 `json:"pts" yaml:"pts"`
	PF  float64 `json:"pf" yaml:"pf"`
	Tov float64 `json:"tov" yaml:"tov"`

	GP float64 `json:"gp" yaml:"gp"`
	GS float64 `json:"gs" yaml:"gs"`

	EFGPct float64 `json:"efg_pct" yaml:"efg_pct"`
}

// PerGame divides every counting field except games played and games started
// by games played. Percentages are carried over unchanged.
//
// Postcondition: if GP is zero, every divided field is zero.
func (b StatBlock) PerGame() StatBlock {
	out := b
	for _, f := range Fields {
		if f.Kind != Counting || f.Key == "gp" || f.Key == "gs" {
			continue
		}
		if b.GP == 0 {
			f.Set(&out, 0)
			continue
		}
		f.Set(&out, f.Get(b)/b.GP)
	}
	return out
}

// Add returns the field-wise sum of two counting snapshots with percentages
// recomputed from the summed makes and attempts.
func (b StatBlock) Add(other StatBlock) StatBlock {
	out := b
	for _, f := range Fields {
		if f.Kind != Counting {
			continue
		}
		f.Set(&out, f.Get(b)+f.Get(other))
	}
	return out.WithPercentages()
}

// Sum totals the given blocks. The zero StatBlock is returned for no input.
func Sum(blocks ...StatBlock) StatBlock {
	var out StatBlock
	for _, b := range blocks {
		out = out.Add(b)
	}
	return out
}

// WithPercentages recomputes FG%, 3P%, FT% and eFG% from makes and attempts.
func (b StatBlock) WithPercentages() StatBlock {
	b.FGPct = ratio(b.FGM, b.FGA)
	b.FG3Pct = ratio(b.FG3M, b.FG3A)
	b.FTPct = ratio(b.FTM, b.FTA)
	b.EFGPct = ratio(b.FGM+0.5*b.FG3M, b.FGA)
	return b
}

func ratio(makes, attempts float64) float64 {
	if attempts <= 0 {
		return 0
	}
	return makes / attempts
}

// Validate checks that every field is finite and non-negative and that the
// shooting invariants hold.
//
// Postcondition: Returns nil when every field is a finite value >= 0, every
// makes <= attempts and every percentage equals makes/attempts (0 without
// attempts); otherwise an error wrapping ErrInvalidRecord that lists all
// violations.
func (b StatBlock) Validate() error {
	var errs []string
	finite := true
	for _, f := range Fields {
		v := f.Get(b)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, fmt.Sprintf("%s is not finite", f.Key))
			finite = false
		case v < 0:
			errs = append(errs, fmt.Sprintf("%s is negative (%g)", f.Key, v))
		}
	}
	if !finite {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(errs, "; "))
	}
	for _, s := range shootingTriples {
		makes, attempts, pct := s.makes.Get(b), s.attempts.Get(b), s.pct.Get(b)
		if makes > attempts {
			errs = append(errs, fmt.Sprintf("%s (%g) exceeds %s (%g)", s.makes.Key, makes, s.attempts.Key, attempts))
		}
		want := ratio(makes, attempts)
		if math.Abs(pct-want) > pctTolerance {
			errs = append(errs, fmt.Sprintf("%s is %g, want %.3f", s.pct.Key, pct, want))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(errs, "; "))
	}
	return nil
}

type shootingTriple struct {
	makes, attempts, pct Field
}

var shootingTriples = []shootingTriple{
	{makes: mustField("fgm"), attempts: mustField("fga"), pct: mustField("fg_pct")},
	{makes: mustField("fg3m"), attempts: mustField("fg3a"), pct: mustField("fg3_pct")},
	{makes: mustField("ftm"), attempts: mustField("fta"), pct: mustField("ft_pct")},
}
