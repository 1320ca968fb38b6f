// Package postgres stores player stat snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hoopstats/internal/config"
)

// ApplicationName is reported to the server for every pooled connection.
const ApplicationName = "hoopstats"

// Pool owns the snapshot store's connections.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the snapshot database and verifies it with a ping.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns a ready Pool, or a non-nil error with nothing left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// EnsureSchema creates the players table if it is missing. cmd/migrate is the
// normal path; this serves fixture seeding and tests.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating players schema: %w", err)
	}
	return nil
}

// Health pings the database within timeout. A failure reports how many
// connections the pool held at the time.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		st := p.pool.Stat()
		return fmt.Errorf("postgres unhealthy (conns total=%d idle=%d): %w",
			st.TotalConns(), st.IdleConns(), err)
	}
	return nil
}

// Close releases every connection. The Pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
