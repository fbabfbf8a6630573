package player

import (
	"context"
	"testing"
	"time"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
	"github.com/jason-s-yu/skat/internal/wire"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newRemote wires a remote participant to a scripted client. The script runs
// in its own goroutine and receives the client end of the pipe.
func newRemote(t *testing.T, hand string, script func(ctx context.Context, c transport.Conn)) *Remote {
	t.Helper()
	logger, _ := test.NewNullLogger()
	server, client := transport.Pipe("alice")
	ctx := testContext(t)
	go script(ctx, client)
	t.Cleanup(func() { server.Close() })
	return NewRemote(models.NewSeat(1, "alice", models.MustParseHand(hand)), server, logger)
}

func reply(ctx context.Context, c transport.Conn, m wire.Message) wire.Message {
	prompt, err := c.Receive(ctx)
	if err != nil {
		return wire.Message{}
	}
	_ = c.Send(ctx, m)
	return prompt
}

func TestRemoteBet(t *testing.T) {
	cases := map[string]bool{"y": true, " Y ": true, "n": false, "yes": false, "": false}
	for answer, want := range cases {
		prompts := make(chan wire.Message, 1)
		p := newRemote(t, "7D", func(ctx context.Context, c transport.Conn) {
			prompts <- reply(ctx, c, wire.TextLine(answer))
		})
		got, err := p.GetBet(testContext(t))
		require.NoError(t, err, answer)
		assert.Equal(t, want, got, "answer %q", answer)
		assert.True(t, (<-prompts).Is(wire.TagBetRequest))
	}
}

func TestRemoteBetRejectsObjects(t *testing.T) {
	p := newRemote(t, "7D", func(ctx context.Context, c transport.Conn) {
		msg, _ := wire.CardMessage(models.MustParseCard("7D"))
		reply(ctx, c, msg)
	})
	_, err := p.GetBet(testContext(t))
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestRemoteGameChoice(t *testing.T) {
	skat := models.MustParseHand("JC AC")
	acks := make(chan models.Hand, 1)
	p := newRemote(t, "7S 8S 9S TS JD", func(ctx context.Context, c transport.Conn) {
		prompt, err := c.Receive(ctx)
		if err != nil || !prompt.Is(wire.TagSkat) {
			return
		}
		hidden, _ := wire.HandMessage(wire.TagHiddenCards, models.MustParseHand("7S 8S"))
		_ = c.Send(ctx, hidden)

		ack, err := c.Receive(ctx)
		if err != nil {
			return
		}
		h, _ := wire.DecodeHand(ack.Payload)
		acks <- h
		gt, _ := rules.ParseGameType("grand")
		msg, _ := wire.GameTypeMessage(gt)
		_ = c.Send(ctx, msg)
	})

	choice, err := p.GetGameChoice(testContext(t), skat)
	require.NoError(t, err)
	assert.Equal(t, [2]models.Card{models.MustParseCard("7S"), models.MustParseCard("8S")}, choice.Hidden)
	assert.Equal(t, "grand", choice.GameType)
	assert.Equal(t, models.MustParseHand("JD 9S TS JC AC"), <-acks)
}

func TestRemoteGameChoiceRejectsForeignCards(t *testing.T) {
	p := newRemote(t, "7S 8S 9S", func(ctx context.Context, c transport.Conn) {
		hidden, _ := wire.HandMessage(wire.TagHiddenCards, models.MustParseHand("AH 7S"))
		reply(ctx, c, hidden)
	})
	_, err := p.GetGameChoice(testContext(t), models.MustParseHand("JC AC"))
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestRemoteGameChoiceRejectsWrongCount(t *testing.T) {
	p := newRemote(t, "7S 8S 9S", func(ctx context.Context, c transport.Conn) {
		hidden, _ := wire.HandMessage(wire.TagHiddenCards, models.MustParseHand("7S"))
		reply(ctx, c, hidden)
	})
	_, err := p.GetGameChoice(testContext(t), models.MustParseHand("JC AC"))
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestRemoteGameChoicePassesUnknownToken(t *testing.T) {
	p := newRemote(t, "7S 8S 9S", func(ctx context.Context, c transport.Conn) {
		hidden, _ := wire.HandMessage(wire.TagHiddenCards, models.MustParseHand("7S 8S"))
		reply(ctx, c, hidden)
		reply(ctx, c, wire.Object(wire.TagGameType, []byte(`{"type":"ramsch"}`)))
	})
	choice, err := p.GetGameChoice(testContext(t), models.MustParseHand("JC AC"))
	require.NoError(t, err)
	assert.Equal(t, "ramsch", choice.GameType)
}

func TestRemotePlay(t *testing.T) {
	requests := make(chan wire.PlayRequest, 1)
	p := newRemote(t, "7D JH AS", func(ctx context.Context, c transport.Conn) {
		msg, _ := wire.CardMessage(models.MustParseCard("JH"))
		prompt := reply(ctx, c, msg)
		req, _ := wire.DecodePlayRequest(prompt.Payload)
		requests <- req
	})
	tr := rules.Trick{{PlayerID: 3, Card: models.MustParseCard("AH")}}
	r, err := rules.New(2, "grand")
	require.NoError(t, err)

	c, err := p.GetPlay(testContext(t), tr, r)
	require.NoError(t, err)
	assert.Equal(t, models.MustParseCard("JH"), c)

	req := <-requests
	assert.Equal(t, tr, req.Trick)
	assert.Equal(t, models.MustParseHand("7D JH AS"), req.Hand)
}

func TestRemotePlayRejectsCardNotHeld(t *testing.T) {
	p := newRemote(t, "7D JH AS", func(ctx context.Context, c transport.Conn) {
		msg, _ := wire.CardMessage(models.MustParseCard("JC"))
		reply(ctx, c, msg)
	})
	_, err := p.GetPlay(testContext(t), nil, nil)
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestRemoteClosedConnectionIsViolation(t *testing.T) {
	p := newRemote(t, "7D", func(ctx context.Context, c transport.Conn) {
		_, _ = c.Receive(ctx)
		c.Close()
	})
	_, err := p.GetBet(testContext(t))
	assert.ErrorIs(t, err, ErrProtocolViolation)
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestDefaultPolicy(t *testing.T) {
	seat := models.NewSeat(3, "Bot", models.MustParseHand("7D AS TH KC"))
	bot := NewAutomated(seat, nil)
	ctx := testContext(t)

	bet, err := bot.GetBet(ctx)
	require.NoError(t, err)
	assert.False(t, bet)
	assert.Nil(t, bot.Conn())

	choice, err := bot.GetGameChoice(ctx, models.MustParseHand("8D QC"))
	require.NoError(t, err)
	assert.Equal(t, "grand", choice.GameType)
	assert.Equal(t, [2]models.Card{models.MustParseCard("7D"), models.MustParseCard("8D")}, choice.Hidden)
	assert.Equal(t, models.MustParseHand("7D AS TH KC"), seat.Hand, "policy must not touch the seat")

	c, err := bot.GetPlay(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MustParseCard("7D"), c)
}

func TestRandomPolicyOnlyUsesOwnCards(t *testing.T) {
	hand := models.MustParseHand("7D AS TH KC JH")
	skat := models.MustParseHand("8D QC")
	bot := NewAutomated(models.NewSeat(3, "Bot", hand), NewRandomPolicy(42, 0.5))
	ctx := testContext(t)
	for i := 0; i < 100; i++ {
		c, err := bot.GetPlay(ctx, nil, nil)
		require.NoError(t, err)
		assert.True(t, hand.Contains(c))

		choice, err := bot.GetGameChoice(ctx, skat)
		require.NoError(t, err)
		_, err = rules.ParseGameType(choice.GameType)
		assert.NoError(t, err)
	}
}

type cheatingPolicy struct{ DefaultPolicy }

func (cheatingPolicy) Play(models.Hand, rules.Trick, *rules.Rules) models.Card {
	return models.MustParseCard("JC")
}

func (cheatingPolicy) Choose(models.Hand, models.Hand) Choice {
	jc := models.MustParseCard("JC")
	return Choice{Hidden: [2]models.Card{jc, jc}, GameType: "grand"}
}

func TestAutomatedRejectsIllegalPolicy(t *testing.T) {
	bot := NewAutomated(models.NewSeat(3, "Bot", models.MustParseHand("7D")), cheatingPolicy{})
	_, err := bot.GetPlay(testContext(t), nil, nil)
	assert.ErrorIs(t, err, ErrPolicy)

	_, err = bot.GetGameChoice(testContext(t), models.MustParseHand("JC AC"))
	assert.ErrorIs(t, err, ErrPolicy)
}

func TestPostSkatHand(t *testing.T) {
	hand := models.MustParseHand("7S 8S JD")
	skat := models.MustParseHand("JC AC")
	got, err := PostSkatHand(hand, skat, [2]models.Card{models.MustParseCard("7S"), models.MustParseCard("AC")})
	require.NoError(t, err)
	assert.Equal(t, models.MustParseHand("JD 8S JC"), got)
	assert.Equal(t, models.MustParseHand("7S 8S JD"), hand)
}
