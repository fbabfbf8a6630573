// Package game runs one table of Skat from the deal to the final score.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skat/internal/database"
	"github.com/jason-s-yu/skat/internal/gamelog"
	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/player"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
	"github.com/jason-s-yu/skat/internal/wire"
	"github.com/sirupsen/logrus"
)

const (
	// RemoteSeats is the number of human players; the last seat is automated.
	RemoteSeats = 2
	// Rounds is the number of tricks in a game.
	Rounds = models.HandSize
	// DefaultBotName names the automated seat.
	DefaultBotName = "Bot"
)

// Seater hands the game its remote connections. Close releases whatever
// listens for them.
type Seater interface {
	Accept(ctx context.Context, n int) ([]transport.Conn, error)
	Close() error
}

// ResultStore persists finished games.
type ResultStore interface {
	RecordGame(ctx context.Context, res database.GameResult) error
}

// Options configures a game. The zero value shuffles a fresh deck, seats a
// DefaultPolicy bot and records nothing.
type Options struct {
	// ID names the game in logs and storage; zero picks a random one.
	ID uuid.UUID

	// Deck fixes the card order instead of shuffling.
	Deck []models.Card
	Rand *rand.Rand

	BotName   string
	BotPolicy player.Policy

	// TurnTimeout bounds every participant decision when positive.
	TurnTimeout time.Duration

	Recorder gamelog.Recorder
	Results  ResultStore
}

// Declaration fixes who plays which game. It is made once per game.
type Declaration struct {
	Declarer int
	Type     rules.GameType
	Hidden   [2]models.Card
}

// Game owns all state of one table. Run drives it; the accessors are meant for
// inspection once Run has returned.
type Game struct {
	ID uuid.UUID

	opts      Options
	seater    Seater
	logger    *logrus.Entry
	broadcast *transport.Broadcaster

	phase        Phase
	hands        [3]models.Hand
	skat         models.Hand
	participants [3]player.Participant
	declaration  *Declaration
	rules        *rules.Rules
	leader       int
	tricksLeft   int
	tricks       []rules.Trick
	tricksWon    [3]int
	scores       [3]int
	startedAt    time.Time
}

// New prepares a game that takes its remote players from seater.
func New(seater Seater, logger logrus.FieldLogger, opts Options) *Game {
	if opts.BotName == "" {
		opts.BotName = DefaultBotName
	}
	if opts.Recorder == nil {
		opts.Recorder = gamelog.Discard{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Game{
		ID:         id,
		opts:       opts,
		seater:     seater,
		logger:     logger.WithField("game", id),
		leader:     1,
		tricksLeft: Rounds,
	}
}

func (g *Game) Phase() Phase                          { return g.phase }
func (g *Game) Declaration() *Declaration             { return g.declaration }
func (g *Game) Tricks() []rules.Trick                 { return g.tricks }
func (g *Game) Scores() [3]int                        { return g.scores }
func (g *Game) Participant(id int) player.Participant { return g.participants[id-1] }

func (g *Game) setPhase(p Phase) {
	g.phase = p
	g.logger.WithField("phase", p).Debug("phase change")
}

// turn bounds a single participant decision.
func (g *Game) turn(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.TurnTimeout > 0 {
		return context.WithTimeout(ctx, g.opts.TurnTimeout)
	}
	return context.WithCancel(ctx)
}

// Run plays the game to the end. It returns StatusNoDeclarer when nobody
// wants to play and StatusFailed with the cause on any fatal error. The
// seater, the recorder and every connection are released before it returns.
func (g *Game) Run(ctx context.Context) (Status, error) {
	g.startedAt = time.Now()
	defer g.release()

	if err := g.deal(); err != nil {
		return StatusFailed, err
	}
	if err := g.accept(ctx); err != nil {
		return StatusFailed, err
	}
	declarer, err := g.declare(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if declarer == nil {
		g.logger.Info("nobody is playing")
		g.store(ctx, StatusNoDeclarer)
		return StatusNoDeclarer, nil
	}
	if err := g.selectGame(ctx, declarer); err != nil {
		return StatusFailed, err
	}
	if err := g.play(ctx); err != nil {
		return StatusFailed, err
	}
	g.score(ctx)
	return StatusCompleted, nil
}

func (g *Game) deal() error {
	g.setPhase(PhaseDealing)
	deck := g.opts.Deck
	if deck == nil {
		deck = models.NewDeck()
		models.Shuffle(deck, g.opts.Rand)
	}
	hands, skat, err := models.Deal(deck)
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	g.hands, g.skat = hands, skat
	return nil
}

func (g *Game) accept(ctx context.Context) error {
	g.setPhase(PhaseAccepting)
	g.logger.Info("Waiting for players to connect...")
	conns, err := g.seater.Accept(ctx, RemoteSeats)
	if err != nil {
		return fmt.Errorf("accept players: %w", err)
	}

	for i, c := range conns {
		name := c.Name()
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		seat := models.NewSeat(i+1, name, g.hands[i])
		g.participants[i] = player.NewRemote(seat, c, g.logger)

		msg, err := wire.HandMessage(wire.TagHand, seat.Hand)
		if err != nil {
			return err
		}
		transport.SendBestEffort(ctx, c, msg, g.logger)
		g.logger.Info(name + " connected")
	}
	bot := models.NewSeat(3, g.opts.BotName, g.hands[2])
	g.participants[2] = player.NewAutomated(bot, g.opts.BotPolicy)
	g.broadcast = transport.NewBroadcaster(conns, g.logger)

	for _, p := range g.participants {
		g.record(g.opts.Recorder.RecordHand(ctx, p.Seat()))
	}
	return nil
}

// declare asks every seat in id order; the last one to say yes plays.
func (g *Game) declare(ctx context.Context) (player.Participant, error) {
	g.setPhase(PhaseDeclaring)
	var declarer player.Participant
	for _, p := range g.participants {
		tctx, cancel := g.turn(ctx)
		bet, err := p.GetBet(tctx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("bet: %w", err)
		}
		if bet {
			declarer = p
		}
	}
	if declarer != nil {
		g.broadcast.Text(ctx, declarer.Seat().Name+" is playing!")
	}
	return declarer, nil
}

func (g *Game) selectGame(ctx context.Context, declarer player.Participant) error {
	g.setPhase(PhaseGameSelection)
	seat := declarer.Seat()
	g.logger.Infof("Sending skat to %s...", seat.Name)

	tctx, cancel := g.turn(ctx)
	choice, err := declarer.GetGameChoice(tctx, g.skat.Clone())
	cancel()
	if err != nil {
		return fmt.Errorf("game selection: %w", err)
	}

	after, err := player.PostSkatHand(seat.Hand, g.skat, choice.Hidden)
	if err != nil {
		return fmt.Errorf("%w: player %d: %w", player.ErrProtocolViolation, seat.ID, err)
	}
	r, err := rules.New(seat.ID, choice.GameType)
	if err != nil {
		return fmt.Errorf("player %d: %w", seat.ID, err)
	}

	seat.Hand = after
	seat.CardsWon = append(seat.CardsWon, choice.Hidden[:]...)
	g.rules = r
	g.declaration = &Declaration{Declarer: seat.ID, Type: r.Type, Hidden: choice.Hidden}

	g.broadcast.Text(ctx, "\n"+seat.Name+" is playing "+r.String()+"\n")
	msg, err := wire.GameTypeMessage(r.Type)
	if err != nil {
		return err
	}
	g.broadcast.Send(ctx, msg)
	g.record(g.opts.Recorder.RecordDeclaration(ctx, r, seat.Hand))
	return nil
}

func (g *Game) play(ctx context.Context) error {
	g.setPhase(PhasePlaying)
	for g.tricksLeft > 0 {
		if err := g.playRound(ctx); err != nil {
			return err
		}
	}
	return nil
}

// playRound collects one card from each seat starting at the leader, then
// hands the trick to its winner, who leads the next round.
func (g *Game) playRound(ctx context.Context) error {
	trick := make(rules.Trick, 0, rules.TrickSize)
	pid := g.leader
	for range rules.TrickSize {
		on := g.participants[pid-1]
		seat := on.Seat()
		g.notifyWaiting(ctx, on)

		tctx, cancel := g.turn(ctx)
		card, err := on.GetPlay(tctx, append(rules.Trick(nil), trick...), g.rules)
		cancel()
		if err != nil {
			return fmt.Errorf("play: %w", err)
		}
		if !seat.Hand.Remove(card) {
			return fmt.Errorf("%w: player %d played %s which is not in hand", player.ErrProtocolViolation, pid, card)
		}
		trick = append(trick, rules.Play{PlayerID: pid, Card: card})

		g.broadcast.Text(ctx, seat.Name+" played ")
		msg, err := wire.CardMessage(card)
		if err != nil {
			return err
		}
		g.broadcast.Send(ctx, msg)
		pid = pid%3 + 1
	}

	winnerID, err := g.rules.Winner(trick)
	if err != nil {
		return err
	}
	winner := g.participants[winnerID-1].Seat()
	g.broadcast.Text(ctx, winner.Name+" won the round!\n")

	winner.CardsWon = append(winner.CardsWon, trick.Cards()...)
	g.leader = winnerID
	g.tricksWon[winnerID-1]++
	g.tricks = append(g.tricks, trick)
	g.tricksLeft--
	g.record(g.opts.Recorder.RecordTrick(ctx, trick))
	return nil
}

// notifyWaiting tells every other remote seat whose turn it is.
func (g *Game) notifyWaiting(ctx context.Context, on player.Participant) {
	line := wire.TextLine("Waiting for " + on.Seat().Name + " to play...")
	for _, p := range g.participants {
		if p == on || p.Conn() == nil {
			continue
		}
		transport.SendBestEffort(ctx, p.Conn(), line, g.logger)
	}
}

func (g *Game) score(ctx context.Context) {
	g.setPhase(PhaseScoring)
	for i, p := range g.participants {
		seat := p.Seat()
		g.scores[i] = g.rules.CountPoints(seat.CardsWon)
		g.broadcast.Text(ctx, fmt.Sprintf("%s won %d points", seat.Name, g.scores[i]))
	}
	g.store(ctx, StatusCompleted)
}

// DeclarerWon reports the outcome of a scored game: a null game is won by
// taking no trick, any other game by taking more than half of the points.
func (g *Game) DeclarerWon() bool {
	if g.declaration == nil || g.phase < PhaseScoring {
		return false
	}
	d := g.declaration.Declarer
	if g.declaration.Type.Kind == rules.KindNull {
		return g.tricksWon[d-1] == 0
	}
	return g.scores[d-1] > rules.TotalPoints/2
}

// Result summarises the game for storage.
func (g *Game) Result(status Status) database.GameResult {
	res := database.GameResult{
		GameID:     g.ID,
		Status:     status.String(),
		StartedAt:  g.startedAt,
		FinishedAt: time.Now(),
	}
	if g.declaration != nil {
		res.Declarer = g.declaration.Declarer
		res.GameType = g.declaration.Type.Token()
		res.DeclarerWon = g.DeclarerWon()
	}
	for i, p := range g.participants {
		if p == nil {
			continue
		}
		res.Seats = append(res.Seats, database.SeatResult{
			Seat:   i + 1,
			Name:   p.Seat().Name,
			Points: g.scores[i],
			Tricks: g.tricksWon[i],
		})
	}
	return res
}

func (g *Game) store(ctx context.Context, status Status) {
	if g.opts.Results == nil {
		return
	}
	if err := g.opts.Results.RecordGame(ctx, g.Result(status)); err != nil {
		g.logger.Errorf("failed to store result: %v", err)
	}
}

// record logs game log failures; the game goes on without its log.
func (g *Game) record(err error) {
	if err != nil {
		g.logger.Warnf("game log: %v", err)
	}
}

func (g *Game) release() {
	g.setPhase(PhaseTerminated)
	if err := g.seater.Close(); err != nil {
		g.logger.Warnf("closing seater: %v", err)
	}
	if err := g.opts.Recorder.Close(); err != nil {
		g.logger.Warnf("closing game log: %v", err)
	}
	for _, p := range g.participants {
		if p != nil && p.Conn() != nil {
			p.Conn().Close()
		}
	}
}
