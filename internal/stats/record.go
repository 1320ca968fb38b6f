package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// HeadshotURLFormat is the NBA CDN template for player headshots.
const HeadshotURLFormat = "https://cdn.nba.com/headshots/nba/latest/1040x760/%d.png"

// HeadshotURL returns the CDN headshot reference for a player id.
func HeadshotURL(playerID int64) string {
	return fmt.Sprintf(HeadshotURLFormat, playerID)
}

// Split holds one StatBlock per season label plus the career block.
type Split struct {
	Seasons map[string]StatBlock `json:"seasons"`
	Career  StatBlock            `json:"career"`
}

// SeasonLabels returns the split's season labels in ascending order.
func (s Split) SeasonLabels() []string {
	labels := make([]string, 0, len(s.Seasons))
	for label := range s.Seasons {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Subset is a regular-season or postseason history, as totals and per game.
type Subset struct {
	Total   Split `json:"total"`
	PerGame Split `json:"pergame"`
}

// NewSubset derives a complete Subset from per-season totals.
//
// Postcondition: Total.Career is the sum of every season, and every PerGame
// block equals the matching Total block divided by its games played.
func NewSubset(seasonTotals map[string]StatBlock) Subset {
	total := Split{Seasons: make(map[string]StatBlock, len(seasonTotals))}
	perGame := Split{Seasons: make(map[string]StatBlock, len(seasonTotals))}

	blocks := make([]StatBlock, 0, len(seasonTotals))
	for label, b := range seasonTotals {
		b = b.WithPercentages()
		total.Seasons[label] = b
		perGame.Seasons[label] = b.PerGame()
		blocks = append(blocks, b)
	}
	total.Career = Sum(blocks...)
	perGame.Career = total.Career.PerGame()

	return Subset{Total: total, PerGame: perGame}
}

// PlayerStatRecord is a player's full statistical history.
type PlayerStatRecord struct {
	PlayerID   int64   `json:"player_id"`
	Name       string  `json:"player_name"`
	Headshot   string  `json:"player_headshot"`
	Active     bool    `json:"active"`
	Regular    Subset  `json:"regular"`
	Postseason *Subset `json:"postseason,omitempty"`
}

// SubsetFor returns the regular or postseason subset; ok is false when the
// postseason is requested and the player has none.
func (r PlayerStatRecord) SubsetFor(postseason bool) (Subset, bool) {
	if !postseason {
		return r.Regular, true
	}
	if r.Postseason == nil {
		return Subset{}, false
	}
	return *r.Postseason, true
}

// Validate checks every invariant of the record.
//
// Postcondition: Returns nil if the record is well formed, or an error
// wrapping ErrInvalidRecord describing all violations.
func (r PlayerStatRecord) Validate() error {
	var errs []string
	if r.PlayerID <= 0 {
		errs = append(errs, fmt.Sprintf("player_id must be positive, got %d", r.PlayerID))
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "player_name must not be empty")
	}
	errs = append(errs, validateSubset("regular", r.Regular)...)
	if r.Postseason != nil {
		errs = append(errs, validateSubset("postseason", *r.Postseason)...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: player %d: %s", ErrInvalidRecord, r.PlayerID, strings.Join(errs, "; "))
	}
	return nil
}

// DecodeRecord decodes a stored JSON record expected to belong to playerID.
//
// Postcondition: Returns a validated record whose PlayerID is playerID, or an
// error wrapping ErrInvalidRecord.
func DecodeRecord(data []byte, playerID int64) (*PlayerStatRecord, error) {
	var rec PlayerStatRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: player %d: %v", ErrInvalidRecord, playerID, err)
	}
	if rec.PlayerID != playerID {
		return nil, fmt.Errorf("%w: stored under player %d but holds player %d", ErrInvalidRecord, playerID, rec.PlayerID)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func validateSubset(name string, s Subset) []string {
	var errs []string

	for label := range s.Total.Seasons {
		if _, ok := s.PerGame.Seasons[label]; !ok {
			errs = append(errs, fmt.Sprintf("%s: season %q has totals but no per-game entry", name, label))
		}
	}
	for label := range s.PerGame.Seasons {
		if _, ok := s.Total.Seasons[label]; !ok {
			errs = append(errs, fmt.Sprintf("%s: season %q has per-game but no totals entry", name, label))
		}
	}

	check := func(where string, b StatBlock) {
		if err := b.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s %s: %v", name, where, err))
		}
	}
	check("total career", s.Total.Career)
	check("per-game career", s.PerGame.Career)
	for _, label := range s.Total.SeasonLabels() {
		check("total "+label, s.Total.Seasons[label])
	}
	for _, label := range s.PerGame.SeasonLabels() {
		check("per-game "+label, s.PerGame.Seasons[label])
	}

	want := s.Total.Career.PerGame()
	for _, f := range Fields {
		if f.Kind != Counting {
			continue
		}
		if math.Abs(f.Get(want)-f.Get(s.PerGame.Career)) > perGameTolerance(f.Get(want)) {
			errs = append(errs, fmt.Sprintf("%s: per-game career %s is %g, want %g",
				name, f.Key, f.Get(s.PerGame.Career), f.Get(want)))
		}
	}
	return errs
}

// perGameTolerance allows per-game values published at one decimal place.
func perGameTolerance(want float64) float64 {
	return math.Max(0.05, math.Abs(want)*1e-9)
}

// PlayerSummary identifies a player in search results.
type PlayerSummary struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"player_name"`
	Active   bool   `json:"active"`
	Headshot string `json:"player_headshot"`
}

// Summary returns the record's identity fields.
func (r PlayerStatRecord) Summary() PlayerSummary {
	return PlayerSummary{PlayerID: r.PlayerID, Name: r.Name, Active: r.Active, Headshot: r.Headshot}
}

// SortSummaries orders active players first, then by name, then by id.
func SortSummaries(players []PlayerSummary) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Active != b.Active {
			return a.Active
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
}

// NormalizeQuery turns a search path segment into a lowercase query, treating
// '+' as a space and collapsing runs of whitespace.
func NormalizeQuery(q string) string {
	q = strings.ReplaceAll(q, "+", " ")
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// MatchesQuery reports whether name contains the normalized query.
func MatchesQuery(name, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return false
	}
	return strings.Contains(NormalizeQuery(name), normalizedQuery)
}
