package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Tier is one named level of a Chain, fastest first. A ReadOnly tier is
// never backfilled even when its Source implements Writer.
type Tier struct {
	Name     string
	Source   compare.RecordSource
	ReadOnly bool
}

// Chain is a read-through RecordSource over ordered tiers. A record found in
// a later tier is saved into every earlier writable tier.
type Chain struct {
	tiers  []Tier
	logger *zap.Logger
}

// NewChain builds a Chain.
//
// Precondition: at least one tier; logger must be non-nil.
func NewChain(logger *zap.Logger, tiers ...Tier) *Chain {
	return &Chain{tiers: tiers, logger: logger}
}

// Tiers returns the tier names in lookup order.
func (c *Chain) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name
	}
	return names
}

// PlayerStats asks each tier in turn. A tier that fails for any reason other
// than a miss is logged and skipped.
//
// Postcondition: Returns the first record found, or an error wrapping
// compare.ErrPlayerNotFound.
func (c *Chain) PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	var lastErr error
	for i, t := range c.tiers {
		rec, err := t.Source.PlayerStats(ctx, playerID)
		if err == nil && rec != nil {
			c.logger.Debug("record served",
				zap.String("tier", t.Name),
				zap.Int64("player_id", playerID),
			)
			c.backfill(ctx, i, rec)
			return rec, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned no record: %w", t.Name, compare.ErrPlayerNotFound)
		}
		lastErr = err

		if errors.Is(err, compare.ErrPlayerNotFound) {
			c.logger.Debug("tier miss", zap.String("tier", t.Name), zap.Int64("player_id", playerID))
		} else {
			c.logger.Warn("tier failed",
				zap.String("tier", t.Name),
				zap.Int64("player_id", playerID),
				zap.Error(err),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no tiers configured")
	}
	if errors.Is(lastErr, compare.ErrPlayerNotFound) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: player %d: %w", compare.ErrPlayerNotFound, playerID, lastErr)
}

func (c *Chain) backfill(ctx context.Context, found int, rec *stats.PlayerStatRecord) {
	for _, t := range c.tiers[:found] {
		if t.ReadOnly {
			continue
		}
		w, ok := t.Source.(Writer)
		if !ok {
			continue
		}
		if err := w.Save(ctx, rec); err != nil {
			c.logger.Warn("backfill failed",
				zap.String("tier", t.Name),
				zap.Int64("player_id", rec.PlayerID),
				zap.Error(err),
			)
		}
	}
}

// SearchChain is a Searcher that falls back to the next searcher on error.
type SearchChain struct {
	searchers []Searcher
	logger    *zap.Logger
}

// NewSearchChain builds a SearchChain; the most complete searcher goes first.
func NewSearchChain(logger *zap.Logger, searchers ...Searcher) *SearchChain {
	return &SearchChain{searchers: searchers, logger: logger}
}

// SearchPlayers returns the first successful result, which may be empty.
func (s *SearchChain) SearchPlayers(ctx context.Context, query string) ([]stats.PlayerSummary, error) {
	var lastErr error
	for _, searcher := range s.searchers {
		players, err := searcher.SearchPlayers(ctx, query)
		if err == nil {
			return players, nil
		}
		s.logger.Warn("search failed, trying next source", zap.String("query", query), zap.Error(err))
		lastErr = err
	}
	if lastErr == nil {
		return []stats.PlayerSummary{}, nil
	}
	return nil, fmt.Errorf("searching players: %w", lastErr)
}
