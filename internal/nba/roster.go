package nba

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Player returns the roster identity of playerID.
//
// Postcondition: Returns an error wrapping compare.ErrPlayerNotFound when the
// roster has no such player.
func (c *Client) Player(ctx context.Context, playerID int64) (stats.PlayerSummary, error) {
	roster, err := c.loadRoster(ctx)
	if err != nil {
		return stats.PlayerSummary{}, err
	}
	p, ok := roster[playerID]
	if !ok {
		return stats.PlayerSummary{}, fmt.Errorf("player %d not on roster: %w", playerID, compare.ErrPlayerNotFound)
	}
	return p, nil
}

// SearchPlayers returns roster players whose full name contains query, active
// players first. A '+' in query stands for a space.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (c *Client) SearchPlayers(ctx context.Context, query string) ([]stats.PlayerSummary, error) {
	q := stats.NormalizeQuery(query)
	if q == "" {
		return []stats.PlayerSummary{}, nil
	}
	roster, err := c.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	out := []stats.PlayerSummary{}
	for _, p := range roster {
		if stats.MatchesQuery(p.Name, q) {
			out = append(out, p)
		}
	}
	stats.SortSummaries(out)
	return out, nil
}

// loadRoster returns the cached roster, refreshing it once rosterTTL has
// elapsed. Concurrent refreshes share one upstream call.
func (c *Client) loadRoster(ctx context.Context) (map[int64]stats.PlayerSummary, error) {
	c.mu.RLock()
	roster, at := c.roster, c.rosterAt
	c.mu.RUnlock()
	if roster != nil && c.now().Sub(at) < c.rosterTTL {
		return roster, nil
	}

	v, _, err := c.shared(ctx, "roster", 1, func(work context.Context) (any, error) {
		fresh, err := c.fetchRoster(work)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.roster, c.rosterAt = fresh, c.now()
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if roster != nil {
			c.logger.Warn("roster refresh failed, serving stale roster", zap.Error(err))
			return roster, nil
		}
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	return v.(map[int64]stats.PlayerSummary), nil
}

func (c *Client) fetchRoster(ctx context.Context) (map[int64]stats.PlayerSummary, error) {
	q := url.Values{}
	q.Set("LeagueID", "00")
	q.Set("Season", c.rosterSeason)
	q.Set("IsOnlyCurrentSeason", "0")
	resp, err := c.get(ctx, "commonallplayers", q)
	if err != nil {
		return nil, err
	}
	rs, ok := resp.set(CommonAllPlayers)
	if !ok {
		if len(resp.ResultSets) == 0 {
			return nil, fmt.Errorf("commonallplayers: empty response")
		}
		rs = resp.ResultSets[0]
	}

	roster := make(map[int64]stats.PlayerSummary, len(rs.RowSet))
	for _, r := range rs.rows() {
		id, err := r.id("PERSON_ID")
		if err != nil || id <= 0 {
			continue
		}
		name := r.text("DISPLAY_FIRST_LAST")
		if name == "" {
			continue
		}
		roster[id] = stats.PlayerSummary{
			PlayerID: id,
			Name:     name,
			Active:   r.float("ROSTERSTATUS") == 1,
			Headshot: stats.HeadshotURL(id),
		}
	}
	c.logger.Info("roster loaded", zap.Int("players", len(roster)), zap.String("season", c.rosterSeason))
	return roster, nil
}
