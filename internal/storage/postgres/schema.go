package postgres

// Schema mirrors migrations/000001_create_players.up.sql for callers that
// cannot run the migrate tool, such as integration tests.
const Schema = `
	CREATE TABLE IF NOT EXISTS players (
		player_id   BIGINT       PRIMARY KEY,
		player_name TEXT         NOT NULL,
		active      BOOLEAN      NOT NULL DEFAULT FALSE,
		headshot    TEXT         NOT NULL,
		record      JSONB        NOT NULL,
		fetched_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_players_name_lower ON players (LOWER(player_name));
`
