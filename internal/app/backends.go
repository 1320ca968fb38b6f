// Package app assembles the record sources, search fallbacks and health probes
// the stats binaries share.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/cache"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/nba"
	"github.com/cory-johannsen/hoopstats/internal/source"
	"github.com/cory-johannsen/hoopstats/internal/storage/postgres"
)

// Tier names, in lookup order.
const (
	TierFixtures = "fixtures"
	TierCache    = "redis"
	TierDatabase = "postgres"
	TierUpstream = "upstream"
)

// Probe reports one backend's health.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
	Close func()
}

// Backends is the assembled data layer.
type Backends struct {
	Records  *source.Chain
	Searcher *source.SearchChain
	Probes   []Probe
	Fixtures *source.Memory
}

// Close releases every connection Build opened.
func (b *Backends) Close() {
	for i := len(b.Probes) - 1; i >= 0; i-- {
		if b.Probes[i].Close != nil {
			b.Probes[i].Close()
		}
	}
}

// Build connects each enabled backend and orders them fixtures, Redis,
// PostgreSQL, upstream. Fixtures are never backfilled, so fetched records
// live only in the stores that expire or persist them. Search asks upstream first, then PostgreSQL, then
// fixtures.
//
// Precondition: cfg must have passed Validate.
// Postcondition: Returns Backends with at least one tier, or an error with
// any opened connection closed.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}
	var tiers []source.Tier
	var searchers []source.Searcher

	if cfg.Fixtures.Dir != "" {
		start := time.Now()
		mem, err := source.LoadDir(cfg.Fixtures.Dir)
		if err != nil {
			return nil, fmt.Errorf("loading fixtures: %w", err)
		}
		b.Fixtures = mem
		tiers = append(tiers, source.Tier{Name: TierFixtures, Source: mem, ReadOnly: true})
		logger.Info("fixtures loaded",
			zap.String("dir", cfg.Fixtures.Dir),
			zap.Int("players", mem.Len()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	if cfg.Cache.Enabled {
		start := time.Now()
		store, err := cache.Connect(ctx, cfg.Cache)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		tiers = append(tiers, source.Tier{Name: TierCache, Source: store})
		b.Probes = append(b.Probes, Probe{
			Name:  TierCache,
			Check: func(ctx context.Context) error { return store.Health(ctx, 2*time.Second) },
			Close: func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing redis", zap.Error(err))
				}
			},
		})
		logger.Info("redis connected", zap.Duration("ttl", cfg.Cache.TTL), zap.Duration("elapsed", time.Since(start)))
	}

	var repo *postgres.PlayerRepository
	if cfg.Database.Enabled {
		start := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		repo = postgres.NewPlayerRepository(pool.DB())
		tiers = append(tiers, source.Tier{Name: TierDatabase, Source: repo})
		b.Probes = append(b.Probes, Probe{
			Name:  TierDatabase,
			Check: func(ctx context.Context) error { return pool.Health(ctx, 2*time.Second) },
			Close: pool.Close,
		})
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	if cfg.Upstream.Enabled {
		client := nba.NewClient(cfg.Upstream, logger)
		tiers = append(tiers, source.Tier{Name: TierUpstream, Source: client})
		searchers = append(searchers, client)
		logger.Info("upstream configured",
			zap.String("base_url", cfg.Upstream.BaseURL),
			zap.Int("calls_per_minute", cfg.Upstream.CallsPerMinute),
		)
	}

	if repo != nil {
		searchers = append(searchers, repo)
	}
	if b.Fixtures != nil {
		searchers = append(searchers, b.Fixtures)
	}

	if len(tiers) == 0 {
		return nil, errors.New("no record source enabled")
	}
	b.Records = source.NewChain(logger, tiers...)
	b.Searcher = source.NewSearchChain(logger, searchers...)
	return b, nil
}
