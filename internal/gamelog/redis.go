package gamelog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that game records are pushed to.
const DefaultQueueName = "skat_game_log"

// Record types as they appear in Record.Type.
const (
	RecordTypeHand        = "hand"
	RecordTypeDeclaration = "declaration"
	RecordTypeTrick       = "trick"
)

// Record is one game log entry as pushed to Redis.
type Record struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"game_id"`
	Index     int       `json:"index"`
	Type      string    `json:"type"`
	Player    int       `json:"player,omitempty"`
	Name      string    `json:"name,omitempty"`
	Game      string    `json:"game,omitempty"`
	Cards     []string  `json:"cards,omitempty"`
	Plays     []Play    `json:"plays,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// Play is a trick entry in a Record.
type Play struct {
	Player int    `json:"player"`
	Card   string `json:"card"`
}

// ConnectRedis opens a client and checks it with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisRecorder pushes each record as JSON onto a Redis list, for consumers
// that archive or replay games. It owns the client and closes it.
type RedisRecorder struct {
	rdb    *redis.Client
	queue  string
	gameID uuid.UUID
	index  int
	now    func() time.Time
}

// NewRedisRecorder records game gameID onto queue. An empty queue means
// DefaultQueueName.
func NewRedisRecorder(rdb *redis.Client, queue string, gameID uuid.UUID) *RedisRecorder {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisRecorder{rdb: rdb, queue: queue, gameID: gameID, now: time.Now}
}

func (r *RedisRecorder) publish(ctx context.Context, rec Record) error {
	rec.ID = uuid.New()
	rec.GameID = r.gameID
	rec.Index = r.index
	rec.Timestamp = r.now().Unix()
	r.index++

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal game record: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", r.queue, err)
	}
	return nil
}

func tokens(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func (r *RedisRecorder) RecordHand(ctx context.Context, seat *models.Seat) error {
	return r.publish(ctx, Record{
		Type:   RecordTypeHand,
		Player: seat.ID,
		Name:   seat.Name,
		Cards:  tokens(seat.Hand),
	})
}

func (r *RedisRecorder) RecordDeclaration(ctx context.Context, rl *rules.Rules, hand models.Hand) error {
	return r.publish(ctx, Record{
		Type:   RecordTypeDeclaration,
		Player: rl.Declarer,
		Game:   rl.Type.Token(),
		Cards:  tokens(hand),
	})
}

func (r *RedisRecorder) RecordTrick(ctx context.Context, trick rules.Trick) error {
	plays := make([]Play, len(trick))
	for i, p := range trick {
		plays[i] = Play{Player: p.PlayerID, Card: p.Card.String()}
	}
	return r.publish(ctx, Record{Type: RecordTypeTrick, Plays: plays})
}

func (r *RedisRecorder) Close() error {
	return r.rdb.Close()
}
