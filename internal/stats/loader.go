package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlRecordFile is the YAML representation of one player fixture. Seasons
// carry totals only; per-game and career blocks are derived on load.
type yamlRecordFile struct {
	PlayerID   int64                `yaml:"player_id"`
	Name       string               `yaml:"player_name"`
	Headshot   string               `yaml:"player_headshot"`
	Active     bool                 `yaml:"active"`
	Regular    map[string]StatBlock `yaml:"regular"`
	Postseason map[string]StatBlock `yaml:"postseason"`
}

// LoadRecordFromFile reads and validates a single player fixture file.
//
// Precondition: path must point to a YAML player fixture.
// Postcondition: Returns a validated record or a non-nil error.
func LoadRecordFromFile(path string) (*PlayerStatRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading player file %s: %w", path, err)
	}
	rec, err := LoadRecordFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// LoadRecordFromBytes parses a player fixture and derives its per-game and
// career blocks.
//
// Precondition: data must be YAML conforming to the player fixture schema.
// Postcondition: Returns a validated record or a non-nil error.
func LoadRecordFromBytes(data []byte) (*PlayerStatRecord, error) {
	var raw yamlRecordFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing player YAML: %w", err)
	}

	rec := &PlayerStatRecord{
		PlayerID: raw.PlayerID,
		Name:     raw.Name,
		Headshot: raw.Headshot,
		Active:   raw.Active,
		Regular:  NewSubset(raw.Regular),
	}
	if rec.Headshot == "" && rec.PlayerID > 0 {
		rec.Headshot = HeadshotURL(rec.PlayerID)
	}
	if len(raw.Postseason) > 0 {
		post := NewSubset(raw.Postseason)
		rec.Postseason = &post
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// LoadRecordsFromDir loads every .yaml/.yml fixture in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns records keyed by player id, or an error if any file
// fails to load or two files share a player id.
func LoadRecordsFromDir(dir string) (map[int64]*PlayerStatRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading fixture dir %s: %w", dir, err)
	}

	records := make(map[int64]*PlayerStatRecord)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		rec, err := LoadRecordFromFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := records[rec.PlayerID]; dup {
			return nil, fmt.Errorf("duplicate player id %d in %s", rec.PlayerID, e.Name())
		}
		records[rec.PlayerID] = rec
	}
	return records, nil
}
