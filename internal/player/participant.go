// internal/player/participant.go
package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
)

var (
	// ErrProtocolViolation marks a remote reply that is missing, malformed or out
	// of protocol. It is fatal to the game.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrPolicy marks an automated decision that breaks the participant contract.
	ErrPolicy = errors.New("policy returned an illegal decision")
)

// Choice is the declarer's answer after seeing the skat: the two cards put away
// and the game-type token. The token is validated by the rules package.
type Choice struct {
	Hidden   [2]models.Card
	GameType string
}

// Participant is everything the orchestrator can ask of a seat, whether a human
// on a connection or a local policy.
type Participant interface {
	Seat() *models.Seat

	// Conn is the participant's connection, or nil for automated participants.
	Conn() transport.Conn

	GetBet(ctx context.Context) (bool, error)
	GetGameChoice(ctx context.Context, skat models.Hand) (Choice, error)
	GetPlay(ctx context.Context, trick rules.Trick, r *rules.Rules) (models.Card, error)
}

// PostSkatHand returns hand plus skat minus the two hidden cards, sorted. The
// hidden cards must be two distinct cards of hand+skat.
func PostSkatHand(hand, skat models.Hand, hidden [2]models.Card) (models.Hand, error) {
	if hidden[0] == hidden[1] {
		return nil, fmt.Errorf("hidden cards must differ, got %s twice", hidden[0])
	}
	pool := append(hand.Clone(), skat...)
	for _, c := range hidden {
		if !pool.Remove(c) {
			return nil, fmt.Errorf("hidden card %s is not in hand or skat", c)
		}
	}
	pool.Sort()
	return pool, nil
}
