package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Game statuses stored in skat_games.status.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusNoDeclarer = "no_declarer"
	StatusAbandoned  = "abandoned"
)

// SeatResult is one seat's share of a finished game.
type SeatResult struct {
	Seat   int
	Name   string
	Points int
	Tricks int
}

// GameResult is everything stored about a finished game. Declarer is 0 when
// nobody played.
type GameResult struct {
	GameID      uuid.UUID
	Status      string
	Declarer    int
	GameType    string
	DeclarerWon bool
	StartedAt   time.Time
	FinishedAt  time.Time
	Seats       []SeatResult
}

// ResultStore writes game results.
type ResultStore struct {
	db txStarter
}

// NewResultStore writes through db, normally a *pgxpool.Pool.
func NewResultStore(db txStarter) *ResultStore {
	return &ResultStore{db: db}
}

// RecordGame persists the game row and every seat's result in one transaction.
// Recording the same game twice overwrites the earlier rows.
func (s *ResultStore) RecordGame(ctx context.Context, res GameResult) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var declarer *int
		if res.Declarer > 0 {
			declarer = &res.Declarer
		}
		upsertGame := `
			INSERT INTO skat_games (id, status, declarer, game_type, declarer_won, started_at, finished_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				status = $2, declarer = $3, game_type = NULLIF($4, ''),
				declarer_won = $5, finished_at = $7
		`
		if _, err := tx.Exec(ctx, upsertGame, res.GameID, res.Status, declarer, res.GameType,
			res.DeclarerWon, res.StartedAt, res.FinishedAt); err != nil {
			return fmt.Errorf("upsert game: %w", err)
		}

		for _, seat := range res.Seats {
			q := `
				INSERT INTO skat_game_results (game_id, seat, name, points, tricks)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (game_id, seat)
				DO UPDATE SET name = $3, points = $4, tricks = $5
			`
			if _, err := tx.Exec(ctx, q, res.GameID, seat.Seat, seat.Name, seat.Points, seat.Tricks); err != nil {
				return fmt.Errorf("upsert seat %d: %w", seat.Seat, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record game %s: %w", res.GameID, err)
	}
	return nil
}

// SeatResults reads back the stored seats of a game in seat order.
func (s *ResultStore) SeatResults(ctx context.Context, gameID uuid.UUID) ([]SeatResult, error) {
	var out []SeatResult
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT seat, name, points, tricks FROM skat_game_results
			WHERE game_id = $1 ORDER BY seat
		`, gameID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (SeatResult, error) {
			var r SeatResult
			err := row.Scan(&r.Seat, &r.Name, &r.Points, &r.Tricks)
			return r, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read results for %s: %w", gameID, err)
	}
	return out, nil
}
