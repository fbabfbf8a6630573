// internal/player/automated.go
package player

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
)

// Policy decides for an automated participant. Implementations receive copies of
// the cards and must only ever return cards from them.
type Policy interface {
	Bet(hand models.Hand) bool
	Choose(hand, skat models.Hand) Choice
	Play(hand models.Hand, trick rules.Trick, r *rules.Rules) models.Card
}

// Automated is a participant answered locally by a Policy, with no network I/O.
type Automated struct {
	seat   *models.Seat
	policy Policy
}

// NewAutomated binds a seat to a policy. A nil policy means DefaultPolicy.
func NewAutomated(seat *models.Seat, policy Policy) *Automated {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	return &Automated{seat: seat, policy: policy}
}

func (p *Automated) Seat() *models.Seat   { return p.seat }
func (p *Automated) Conn() transport.Conn { return nil }

func (p *Automated) GetBet(context.Context) (bool, error) {
	return p.policy.Bet(p.seat.Hand.Clone()), nil
}

func (p *Automated) GetGameChoice(_ context.Context, skat models.Hand) (Choice, error) {
	choice := p.policy.Choose(p.seat.Hand.Clone(), skat.Clone())
	if _, err := PostSkatHand(p.seat.Hand, skat, choice.Hidden); err != nil {
		return Choice{}, fmt.Errorf("%w: %v", ErrPolicy, err)
	}
	return choice, nil
}

func (p *Automated) GetPlay(_ context.Context, trick rules.Trick, r *rules.Rules) (models.Card, error) {
	c := p.policy.Play(p.seat.Hand.Clone(), slices.Clone(trick), r)
	if !p.seat.Hand.Contains(c) {
		return models.Card{}, fmt.Errorf("%w: card %s is not in hand", ErrPolicy, c)
	}
	return c, nil
}

// DefaultPolicy never bets, puts away the two cheapest cards and declares grand
// when it has to, and always plays the first card of its hand.
type DefaultPolicy struct{}

func (DefaultPolicy) Bet(models.Hand) bool { return false }

func (DefaultPolicy) Choose(hand, skat models.Hand) Choice {
	pool := append(hand, skat...)
	slices.SortStableFunc(pool, func(a, b models.Card) int {
		return rules.CardPoints(a) - rules.CardPoints(b)
	})
	return Choice{Hidden: [2]models.Card{pool[0], pool[1]}, GameType: "grand"}
}

func (DefaultPolicy) Play(hand models.Hand, _ rules.Trick, _ *rules.Rules) models.Card {
	return hand[0]
}

// GameTypeTokens is the recognised declaration vocabulary.
var GameTypeTokens = []string{"clubs", "spades", "hearts", "diamonds", "grand", "null"}

// RandomPolicy makes uniformly random decisions from its own cards.
type RandomPolicy struct {
	Rand *rand.Rand

	// BetChance is the probability of answering yes when asked to play.
	BetChance float64
}

// NewRandomPolicy seeds a RandomPolicy.
func NewRandomPolicy(seed int64, betChance float64) *RandomPolicy {
	return &RandomPolicy{Rand: rand.New(rand.NewSource(seed)), BetChance: betChance}
}

func (p *RandomPolicy) Bet(models.Hand) bool {
	return p.Rand.Float64() < p.BetChance
}

func (p *RandomPolicy) Choose(hand, skat models.Hand) Choice {
	pool := append(hand, skat...)
	idx := p.Rand.Perm(len(pool))
	return Choice{
		Hidden:   [2]models.Card{pool[idx[0]], pool[idx[1]]},
		GameType: GameTypeTokens[p.Rand.Intn(len(GameTypeTokens))],
	}
}

func (p *RandomPolicy) Play(hand models.Hand, _ rules.Trick, _ *rules.Rules) models.Card {
	return hand[p.Rand.Intn(len(hand))]
}
