// internal/player/remote.go
package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
	"github.com/jason-s-yu/skat/internal/wire"
	"github.com/sirupsen/logrus"
)

// BetPrompt is shown to remote participants when asked whether they will play.
const BetPrompt = "Do you want to play this game? (y/n)"

// Remote is a human participant behind a connection. Every operation is one
// prompt followed by one blocking read.
type Remote struct {
	seat   *models.Seat
	conn   transport.Conn
	logger logrus.FieldLogger
}

// NewRemote binds a seat to its connection.
func NewRemote(seat *models.Seat, conn transport.Conn, logger logrus.FieldLogger) *Remote {
	return &Remote{
		seat:   seat,
		conn:   conn,
		logger: logger.WithFields(logrus.Fields{"player": seat.ID, "name": seat.Name}),
	}
}

func (p *Remote) Seat() *models.Seat   { return p.seat }
func (p *Remote) Conn() transport.Conn { return p.conn }

func (p *Remote) violation(op string, err error) error {
	return fmt.Errorf("%w: player %d %s: %w", ErrProtocolViolation, p.seat.ID, op, err)
}

// exchange sends the prompt and waits for the single reply.
func (p *Remote) exchange(ctx context.Context, op string, prompt wire.Message) (wire.Message, error) {
	if err := p.conn.Send(ctx, prompt); err != nil {
		return wire.Message{}, p.violation(op, err)
	}
	reply, err := p.conn.Receive(ctx)
	if err != nil {
		return wire.Message{}, p.violation(op, err)
	}
	p.logger.Debugf("%s reply: kind=%s tag=%s", op, reply.Kind, reply.Tag)
	return reply, nil
}

// GetBet asks for a declaration intent; only "y" is affirmative.
func (p *Remote) GetBet(ctx context.Context) (bool, error) {
	reply, err := p.exchange(ctx, "bet", wire.BetRequestMessage(BetPrompt))
	if err != nil {
		return false, err
	}
	if !reply.IsText() {
		return false, p.violation("bet", fmt.Errorf("%w: expected text line, got %s", wire.ErrMalformed, reply.Tag))
	}
	return strings.EqualFold(strings.TrimSpace(reply.Text), "y"), nil
}

// GetGameChoice shows the skat, reads the two hidden cards, acknowledges them
// with the resulting hand and reads the declared game type.
func (p *Remote) GetGameChoice(ctx context.Context, skat models.Hand) (Choice, error) {
	skatMsg, err := wire.HandMessage(wire.TagSkat, skat)
	if err != nil {
		return Choice{}, err
	}
	reply, err := p.exchange(ctx, "hide", skatMsg)
	if err != nil {
		return Choice{}, err
	}
	if err := wire.Expect(reply, wire.TagHiddenCards); err != nil {
		return Choice{}, p.violation("hide", err)
	}
	cards, err := wire.DecodeHand(reply.Payload)
	if err != nil {
		return Choice{}, p.violation("hide", err)
	}
	if len(cards) != 2 {
		return Choice{}, p.violation("hide", fmt.Errorf("expected 2 hidden cards, got %d", len(cards)))
	}
	choice := Choice{Hidden: [2]models.Card{cards[0], cards[1]}}

	after, err := PostSkatHand(p.seat.Hand, skat, choice.Hidden)
	if err != nil {
		return Choice{}, p.violation("hide", err)
	}
	ack, err := wire.HandMessage(wire.TagHiddenCardsRequestAck, after)
	if err != nil {
		return Choice{}, err
	}
	reply, err = p.exchange(ctx, "declare", ack)
	if err != nil {
		return Choice{}, err
	}
	if err := wire.Expect(reply, wire.TagGameType); err != nil {
		return Choice{}, p.violation("declare", err)
	}
	choice.GameType, err = wire.DecodeGameTypeToken(reply.Payload)
	if err != nil {
		return Choice{}, p.violation("declare", err)
	}
	return choice, nil
}

// GetPlay sends the trick so far with the current hand and reads one card,
// which must be held. Suit following is not checked.
func (p *Remote) GetPlay(ctx context.Context, trick rules.Trick, _ *rules.Rules) (models.Card, error) {
	req, err := wire.PlayRequestMessage(wire.PlayRequest{Trick: trick, Hand: p.seat.Hand})
	if err != nil {
		return models.Card{}, err
	}
	reply, err := p.exchange(ctx, "play", req)
	if err != nil {
		return models.Card{}, err
	}
	if err := wire.Expect(reply, wire.TagCard); err != nil {
		return models.Card{}, p.violation("play", err)
	}
	c, err := wire.DecodeCard(reply.Payload)
	if err != nil {
		return models.Card{}, p.violation("play", err)
	}
	if !p.seat.Hand.Contains(c) {
		return models.Card{}, p.violation("play", fmt.Errorf("card %s is not in hand", c))
	}
	return c, nil
}
