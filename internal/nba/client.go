// Package nba fetches player statistics from the stats.nba.com API.
//
// Calls are spaced by a rate limiter because the API throttles bursts, and
// every failure is reported as compare.ErrPlayerNotFound so callers see a
// single not-found kind at the retrieval boundary.
package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Result set names in the playercareerstats response.
const (
	SeasonTotalsRegularSeason = "SeasonTotalsRegularSeason"
	SeasonTotalsPostSeason    = "SeasonTotalsPostSeason"
	CommonAllPlayers          = "CommonAllPlayers"
)

// combinedTeam marks the aggregate row for a player traded mid-season.
const combinedTeam = "TOT"

// Client is a rate-limited stats.nba.com client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *zap.Logger

	// callBudget bounds one upstream call including its wait for a limiter slot.
	callBudget time.Duration

	rosterSeason string
	rosterTTL    time.Duration
	now          func() time.Time

	flight   singleflight.Group
	mu       sync.RWMutex
	roster   map[int64]stats.PlayerSummary
	rosterAt time.Time
}

// NewClient builds a Client from upstream settings.
//
// Precondition: cfg passes config validation; logger must be non-nil.
// Postcondition: Returns a client whose calls are spaced at
// cfg.CallsPerMinute with a burst of one.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	interval := time.Minute / time.Duration(cfg.CallsPerMinute)
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		callBudget:   cfg.Timeout + interval,
		userAgent:    cfg.UserAgent,
		logger:       logger,
		rosterSeason: cfg.RosterSeason,
		rosterTTL:    cfg.RosterTTL,
		now:          time.Now,
	}
}

// PlayerStats fetches and assembles the full record for playerID. Concurrent
// callers for one player share a single fetch; each still returns as soon as
// its own ctx ends.
//
// Postcondition: Returns a validated record, or an error wrapping
// compare.ErrPlayerNotFound.
func (c *Client) PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	v, shared, err := c.shared(ctx, "player:"+strconv.FormatInt(playerID, 10), 2,
		func(work context.Context) (any, error) {
			return c.fetchRecord(work, playerID)
		})
	if err != nil {
		return nil, fmt.Errorf("%w: player %d: %w", compare.ErrPlayerNotFound, playerID, err)
	}
	if shared {
		c.logger.Debug("shared upstream fetch", zap.Int64("player_id", playerID))
	}
	return v.(*stats.PlayerStatRecord), nil
}

// shared runs fn once per key across concurrent callers. fn gets a context
// detached from any single caller's cancellation and bounded by calls
// upstream call budgets.
func (c *Client) shared(ctx context.Context, key string, calls int, fn func(context.Context) (any, error)) (any, bool, error) {
	ch := c.flight.DoChan(key, func() (any, error) {
		work, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(calls)*c.callBudget)
		defer cancel()
		return fn(work)
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}

func (c *Client) fetchRecord(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	identity, err := c.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("PlayerID", strconv.FormatInt(playerID, 10))
	q.Set("PerMode", "Totals")
	q.Set("LeagueID", "00")
	resp, err := c.get(ctx, "playercareerstats", q)
	if err != nil {
		return nil, err
	}

	regularSet, ok := resp.set(SeasonTotalsRegularSeason)
	if !ok {
		return nil, fmt.Errorf("response has no %s result set", SeasonTotalsRegularSeason)
	}
	regular := seasonTotals(regularSet)
	if len(regular) == 0 {
		return nil, fmt.Errorf("no regular season rows")
	}

	rec := &stats.PlayerStatRecord{
		PlayerID: playerID,
		Name:     identity.Name,
		Headshot: identity.Headshot,
		Active:   identity.Active,
		Regular:  stats.NewSubset(regular),
	}
	if postSet, ok := resp.set(SeasonTotalsPostSeason); ok {
		if post := seasonTotals(postSet); len(post) > 0 {
			sub := stats.NewSubset(post)
			rec.Postseason = &sub
		}
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched player record",
		zap.Int64("player_id", playerID),
		zap.Int("regular_seasons", len(regular)),
		zap.Bool("postseason", rec.Postseason != nil),
	)
	return rec, nil
}

// seasonTotals folds season rows into one totals block per season label.
// A traded player's combined row wins over the per-team rows; without one the
// team rows are summed.
func seasonTotals(rs resultSet) map[string]stats.StatBlock {
	byTeam := map[string][]stats.StatBlock{}
	combined := map[string]stats.StatBlock{}
	for _, r := range rs.rows() {
		label := r.text("SEASON_ID")
		if label == "" {
			continue
		}
		b := blockFromRow(r)
		if strings.EqualFold(r.text("TEAM_ABBREVIATION"), combinedTeam) {
			combined[label] = b
			continue
		}
		byTeam[label] = append(byTeam[label], b)
	}

	out := make(map[string]stats.StatBlock, len(byTeam)+len(combined))
	for label, blocks := range byTeam {
		out[label] = stats.Sum(blocks...)
	}
	for label, b := range combined {
		out[label] = b
	}
	return out
}

func blockFromRow(r row) stats.StatBlock {
	return stats.StatBlock{
		Minutes: r.float("MIN"),
		FGM:     r.float("FGM"),
		FGA:     r.float("FGA"),
		FG3M:    r.float("FG3M"),
		FG3A:    r.float("FG3A"),
		FTM:     r.float("FTM"),
		FTA:     r.float("FTA"),
		OReb:    r.float("OREB"),
		DReb:    r.float("DREB"),
		Reb:     r.float("REB"),
		Ast:     r.float("AST"),
		Stl:     r.float("STL"),
		Blk:     r.float("BLK"),
		Tov:     r.float("TOV"),
		PF:      r.float("PF"),
		Pts:     r.float("PTS"),
		GP:      r.float("GP"),
		GS:      r.float("GS"),
	}.WithPercentages()
}

// get issues one rate-limited GET against endpoint.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return response{}, fmt.Errorf("waiting for upstream slot: %w", err)
	}

	u := c.baseURL + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return response{}, fmt.Errorf("%s: status=%d, body=%s", endpoint, resp.StatusCode, string(body))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return out, nil
}
