// Package database persists finished games and archived game logs in
// PostgreSQL.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool for url and checks it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS skat_games (
	id           UUID PRIMARY KEY,
	status       TEXT NOT NULL,
	declarer     INT,
	game_type    TEXT,
	declarer_won BOOLEAN,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	finished_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS skat_game_results (
	game_id UUID NOT NULL REFERENCES skat_games (id) ON DELETE CASCADE,
	seat    INT  NOT NULL,
	name    TEXT NOT NULL,
	points  INT  NOT NULL,
	tricks  INT  NOT NULL,
	PRIMARY KEY (game_id, seat)
);

CREATE TABLE IF NOT EXISTS skat_game_log (
	id           UUID PRIMARY KEY,
	game_id      UUID NOT NULL REFERENCES skat_games (id) ON DELETE CASCADE,
	record_index INT  NOT NULL,
	record_type  TEXT NOT NULL,
	payload      JSONB NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (game_id, record_index)
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// txStarter is satisfied by *pgxpool.Pool and pgx.Tx.
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
