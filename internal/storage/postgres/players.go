package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 25

// PlayerRepository persists full player stat records as JSONB snapshots.
type PlayerRepository struct {
	db    *pgxpool.Pool
	limit int
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db, limit: DefaultSearchLimit}
}

// Save upserts the record's snapshot, replacing any earlier one.
//
// Precondition: rec must be non-nil and pass Validate.
// Postcondition: The stored snapshot equals rec and fetched_at is now.
func (r *PlayerRepository) Save(ctx context.Context, rec *stats.PlayerStatRecord) error {
	if rec == nil {
		return fmt.Errorf("saving player: nil record")
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("saving player %d: %w", rec.PlayerID, err)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding player %d: %w", rec.PlayerID, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO players (player_id, player_name, active, headshot, record, fetched_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (player_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			active      = EXCLUDED.active,
			headshot    = EXCLUDED.headshot,
			record      = EXCLUDED.record,
			fetched_at  = EXCLUDED.fetched_at`,
		rec.PlayerID, rec.Name, rec.Active, rec.Headshot, body,
	)
	if err != nil {
		return fmt.Errorf("upserting player %d: %w", rec.PlayerID, err)
	}
	return nil
}

// PlayerStats returns the stored snapshot for playerID.
//
// Postcondition: Returns a validated record, or an error wrapping
// compare.ErrPlayerNotFound when no usable snapshot exists.
func (r *PlayerRepository) PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	var body []byte
	err := r.db.QueryRow(ctx, `SELECT record FROM players WHERE player_id = $1`, playerID).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("player %d: %w", playerID, compare.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("querying player %d: %w", playerID, err)
	}

	rec, err := stats.DecodeRecord(body, playerID)
	if err != nil {
		return nil, fmt.Errorf("snapshot for player %d unusable: %w: %w", playerID, compare.ErrPlayerNotFound, err)
	}
	return rec, nil
}

// FetchedAt reports when the snapshot for playerID was last written.
//
// Postcondition: Returns an error wrapping compare.ErrPlayerNotFound when no
// snapshot exists.
func (r *PlayerRepository) FetchedAt(ctx context.Context, playerID int64) (time.Time, error) {
	var at time.Time
	err := r.db.QueryRow(ctx, `SELECT fetched_at FROM players WHERE player_id = $1`, playerID).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, fmt.Errorf("player %d: %w", playerID, compare.ErrPlayerNotFound)
		}
		return time.Time{}, fmt.Errorf("querying player %d: %w", playerID, err)
	}
	return at, nil
}

// SearchPlayers returns stored players whose name contains query, active
// players first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PlayerRepository) SearchPlayers(ctx context.Context, query string) ([]stats.PlayerSummary, error) {
	q := stats.NormalizeQuery(query)
	if q == "" {
		return []stats.PlayerSummary{}, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT player_id, player_name, active, headshot
		FROM players
		WHERE LOWER(player_name) LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY active DESC, player_name ASC, player_id ASC
		LIMIT $2`,
		escapeLike(q), r.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	defer rows.Close()

	out := []stats.PlayerSummary{}
	for rows.Next() {
		var p stats.PlayerSummary
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Active, &p.Headshot); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating players: %w", err)
	}
	return out, nil
}

// escapeLike escapes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
