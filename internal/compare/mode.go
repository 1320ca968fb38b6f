// Package compare implements the player statistical comparison engine: slice
// selection, per-field differentials and the favorability rule that decides
// which column of a two-column display is highlighted.
package compare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModeType tags a ComparisonMode.
type ModeType string

const (
	ModeCareer ModeType = "career"
	ModeSeason ModeType = "season"
)

// Mode selects which slice two players are compared under. Season is set only
// for ModeSeason.
type Mode struct {
	Type   ModeType
	Season string
}

// Career returns the career comparison mode.
func Career() Mode { return Mode{Type: ModeCareer} }

// Season returns the single-season comparison mode for label.
func Season(label string) Mode { return Mode{Type: ModeSeason, Season: label} }

// ParseMode builds a Mode from the mode_type and season_name request values.
//
// Postcondition: Returns a valid Mode, or an error wrapping ErrInvalidMode if
// modeType is unknown, a season mode lacks a label, or a career mode carries
// one.
func ParseMode(modeType, seasonName string) (Mode, error) {
	seasonName = strings.TrimSpace(seasonName)
	switch ModeType(strings.ToLower(strings.TrimSpace(modeType))) {
	case ModeCareer:
		if seasonName != "" {
			return Mode{}, fmt.Errorf("%w: career mode takes no season, got %q", ErrInvalidMode, seasonName)
		}
		return Career(), nil
	case ModeSeason:
		if seasonName == "" {
			return Mode{}, fmt.Errorf("%w: season mode requires season_name", ErrInvalidMode)
		}
		return Season(seasonName), nil
	}
	return Mode{}, fmt.Errorf("%w: mode_type must be one of [career, season], got %q", ErrInvalidMode, modeType)
}

// String renders the mode as "career" or "season:<label>".
func (m Mode) String() string {
	if m.Type == ModeSeason {
		return "season:" + m.Season
	}
	return string(m.Type)
}

type modeJSON struct {
	ModeType   ModeType `json:"mode_type"`
	SeasonName string   `json:"season_name,omitempty"`
}

// MarshalJSON encodes the mode with the same names the HTTP query uses.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(modeJSON{ModeType: m.Type, SeasonName: m.Season})
}

// UnmarshalJSON decodes and validates a mode.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var raw modeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMode(string(raw.ModeType), raw.SeasonName)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// SeasonType selects the regular season or postseason subset.
type SeasonType string

const (
	Regular    SeasonType = "regular"
	Postseason SeasonType = "postseason"
)

// ParseSeasonType accepts "regular" or "postseason"; empty means regular.
func ParseSeasonType(s string) (SeasonType, error) {
	switch SeasonType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Regular:
		return Regular, nil
	case Postseason:
		return Postseason, nil
	}
	return "", fmt.Errorf("%w: season_type must be one of [regular, postseason], got %q", ErrInvalidMode, s)
}

// Basis selects per-game averages or raw totals.
type Basis string

const (
	PerGame Basis = "pergame"
	Totals  Basis = "total"
)

// ParseBasis accepts "pergame" or "total"; empty means per game.
func ParseBasis(s string) (Basis, error) {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case "", PerGame:
		return PerGame, nil
	case Totals:
		return Totals, nil
	}
	return "", fmt.Errorf("%w: basis must be one of [pergame, total], got %q", ErrInvalidMode, s)
}

// Options narrows slice selection. The zero value selects regular-season
// per-game blocks.
type Options struct {
	SeasonType SeasonType
	Basis      Basis
}

func (o Options) normalized() Options {
	if o.SeasonType == "" {
		o.SeasonType = Regular
	}
	if o.Basis == "" {
		o.Basis = PerGame
	}
	return o
}
