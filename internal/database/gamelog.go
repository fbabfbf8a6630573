package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/skat/internal/gamelog"
)

// LogStore archives game log records, as consumed from the Redis queue.
type LogStore struct {
	db txStarter
}

// NewLogStore writes through db, normally a *pgxpool.Pool.
func NewLogStore(db txStarter) *LogStore {
	return &LogStore{db: db}
}

// InsertRecords stores a batch in one transaction. Games are created on first
// sight as in progress; records already stored are skipped so a batch can be
// retried.
func (s *LogStore) InsertRecords(ctx context.Context, recs []gamelog.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertRecordTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert record %d of game %s: %w", rec.Index, rec.GameID, err)
			}
		}
		return nil
	})
}

func insertRecordTx(ctx context.Context, tx pgx.Tx, rec gamelog.Record) error {
	upsertGameQ := `
		INSERT INTO skat_games (id, status, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	recorded := time.Unix(rec.Timestamp, 0)
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID, StatusInProgress, recorded); err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	insertQ := `
		INSERT INTO skat_game_log (id, game_id, record_index, record_type, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`
	_, err = tx.Exec(ctx, insertQ, rec.ID, rec.GameID, rec.Index, rec.Type, payload, recorded)
	return err
}

// MarkAbandoned flags a game that is still in progress as abandoned. It
// reports whether a row changed.
func (s *LogStore) MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var changed bool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		q := `
			UPDATE skat_games
			SET status = $2, finished_at = NOW()
			WHERE id = $1 AND status = $3
		`
		tag, err := tx.Exec(ctx, q, gameID, StatusAbandoned, StatusInProgress)
		changed = tag.RowsAffected() > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark game %v abandoned: %w", gameID, err)
	}
	return changed, nil
}

// Records reads back the archived log of a game in order.
func (s *LogStore) Records(ctx context.Context, gameID uuid.UUID) ([]gamelog.Record, error) {
	var out []gamelog.Record
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT payload FROM skat_game_log WHERE game_id = $1 ORDER BY record_index
		`, gameID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (gamelog.Record, error) {
			var raw []byte
			var rec gamelog.Record
			if err := row.Scan(&raw); err != nil {
				return rec, err
			}
			return rec, json.Unmarshal(raw, &rec)
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read log of %s: %w", gameID, err)
	}
	return out, nil
}
