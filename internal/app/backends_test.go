package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/app"
	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/testutil"
)

func fixturesOnly(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Upstream.Enabled = false
	cfg.Fixtures.Dir = "../../fixtures/players"
	return cfg
}

func TestBuildFixturesOnly(t *testing.T) {
	b, err := app.Build(context.Background(), fixturesOnly(t), zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{app.TierFixtures}, b.Records.Tiers())
	assert.Empty(t, b.Probes)

	rec, err := b.Records.PlayerStats(context.Background(), 2544)
	require.NoError(t, err)
	assert.Equal(t, "LeBron James", rec.Name)

	players, err := b.Searcher.SearchPlayers(context.Background(), "curry")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, int64(201939), players[0].PlayerID)
}

func TestBuildNoSources(t *testing.T) {
	cfg := fixturesOnly(t)
	cfg.Fixtures.Dir = ""
	_, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestBuildBadFixturesDir(t *testing.T) {
	cfg := fixturesOnly(t)
	cfg.Fixtures.Dir = t.TempDir() + "/missing"
	_, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestBuildUpstreamOrder(t *testing.T) {
	cfg := fixturesOnly(t)
	cfg.Upstream.Enabled = true
	cfg.Upstream.BaseURL = "http://127.0.0.1:1"
	cfg.Upstream.CallsPerMinute = 6000
	b, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, []string{app.TierFixtures, app.TierUpstream}, b.Records.Tiers())

	_, err = b.Records.PlayerStats(context.Background(), 424242)
	assert.True(t, errors.Is(err, compare.ErrPlayerNotFound))
}

func TestBuildWithRedisAndPostgres(t *testing.T) {
	testutil.SkipIfShort(t)
	pg := testutil.NewPostgresContainer(t)
	pg.ApplyMigrations(t)

	cfg := fixturesOnly(t)
	cfg.Database = pg.Config
	cfg.Cache.Enabled = true
	cfg.Cache.RedisURL = testutil.NewRedisContainer(t)

	ctx := context.Background()
	b, err := app.Build(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{app.TierFixtures, app.TierCache, app.TierDatabase}, b.Records.Tiers())
	require.Len(t, b.Probes, 2)
	for _, p := range b.Probes {
		assert.NoError(t, p.Check(ctx), p.Name)
	}
}
