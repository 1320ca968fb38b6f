// Package source composes player record sources: in-memory fixtures, the
// Redis cache, the Postgres snapshot store and the upstream API.
package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Writer accepts records fetched from a slower tier.
type Writer interface {
	Save(ctx context.Context, rec *stats.PlayerStatRecord) error
}

// Searcher finds players by name.
type Searcher interface {
	SearchPlayers(ctx context.Context, query string) ([]stats.PlayerSummary, error)
}

// Memory is a RecordSource, Writer and Searcher over a map of records.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]*stats.PlayerStatRecord
}

// NewMemory returns a Memory holding records. A nil map is allowed.
func NewMemory(records map[int64]*stats.PlayerStatRecord) *Memory {
	m := &Memory{records: make(map[int64]*stats.PlayerStatRecord, len(records))}
	for id, rec := range records {
		m.records[id] = rec
	}
	return m
}

// LoadDir builds a Memory from every YAML record file in dir.
//
// Postcondition: Returns a populated Memory, or an error naming the first
// file that failed to load.
func LoadDir(dir string) (*Memory, error) {
	records, err := stats.LoadRecordsFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}
	return NewMemory(records), nil
}

// PlayerStats returns the stored record or an error wrapping
// compare.ErrPlayerNotFound.
func (m *Memory) PlayerStats(_ context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[playerID]
	if !ok {
		return nil, fmt.Errorf("player %d: %w", playerID, compare.ErrPlayerNotFound)
	}
	return rec, nil
}

// Save stores rec, replacing any record with the same id.
func (m *Memory) Save(_ context.Context, rec *stats.PlayerStatRecord) error {
	if rec == nil {
		return fmt.Errorf("saving player: nil record")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.PlayerID] = rec
	return nil
}

// SearchPlayers matches query against stored names, active players first.
func (m *Memory) SearchPlayers(_ context.Context, query string) ([]stats.PlayerSummary, error) {
	q := stats.NormalizeQuery(query)
	out := []stats.PlayerSummary{}
	if q == "" {
		return out, nil
	}
	m.mu.RLock()
	for _, rec := range m.records {
		if stats.MatchesQuery(rec.Name, q) {
			out = append(out, rec.Summary())
		}
	}
	m.mu.RUnlock()
	stats.SortSummaries(out)
	return out, nil
}

// Len reports how many records are held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
