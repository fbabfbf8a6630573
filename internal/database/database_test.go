package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/skat/internal/gamelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to DATABASE_URL; the tests need a live PostgreSQL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestRecordGame(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewResultStore(pool)

	res := GameResult{
		GameID:      uuid.New(),
		Status:      StatusCompleted,
		Declarer:    2,
		GameType:    "grand",
		DeclarerWon: true,
		StartedAt:   time.Now().Add(-time.Minute),
		FinishedAt:  time.Now(),
		Seats: []SeatResult{
			{Seat: 1, Name: "alice", Points: 0, Tricks: 0},
			{Seat: 2, Name: "bob", Points: 103, Tricks: 8},
			{Seat: 3, Name: "Bot", Points: 17, Tricks: 2},
		},
	}
	require.NoError(t, store.RecordGame(ctx, res))
	// idempotent
	require.NoError(t, store.RecordGame(ctx, res))

	got, err := store.SeatResults(ctx, res.GameID)
	require.NoError(t, err)
	assert.Equal(t, res.Seats, got)

	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM skat_games WHERE id = $1`, res.GameID).Scan(&status))
	assert.Equal(t, StatusCompleted, status)
}

func TestLogStore(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewLogStore(pool)
	gameID := uuid.New()

	recs := []gamelog.Record{
		{ID: uuid.New(), GameID: gameID, Index: 0, Type: gamelog.RecordTypeHand, Player: 1, Name: "alice", Cards: []string{"7D"}, Timestamp: time.Now().Unix()},
		{ID: uuid.New(), GameID: gameID, Index: 1, Type: gamelog.RecordTypeTrick, Plays: []gamelog.Play{{Player: 1, Card: "7D"}}, Timestamp: time.Now().Unix()},
	}
	require.NoError(t, store.InsertRecords(ctx, recs))
	require.NoError(t, store.InsertRecords(ctx, recs[1:]))

	got, err := store.Records(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, recs[0].Cards, got[0].Cards)
	assert.Equal(t, recs[1].Plays, got[1].Plays)

	changed, err := store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, changed)
}
