// internal/rules/rules.go
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jason-s-yu/skat/internal/models"
)

var (
	// ErrInvalidDeclaration is returned when a game-type token is not recognised.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrIncompleteTrick is returned by Winner for anything but a full trick.
	ErrIncompleteTrick = errors.New("trick must hold exactly three plays")
)

// TrickSize is the number of plays in a complete trick.
const TrickSize = 3

// Kind distinguishes the three families of Skat games.
type Kind int

const (
	KindSuit Kind = iota
	KindGrand
	KindNull
)

// GameType is a declared game: a suit game names its trump suit.
type GameType struct {
	Kind  Kind
	Trump models.Suit
}

var suitTokens = map[string]models.Suit{
	"diamonds": models.Diamonds,
	"hearts":   models.Hearts,
	"spades":   models.Spades,
	"clubs":    models.Clubs,
}

// ParseGameType maps a declaration token (one per suit, "grand" or "null") to a
// GameType.
func ParseGameType(token string) (GameType, error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	switch tok {
	case "grand":
		return GameType{Kind: KindGrand}, nil
	case "null":
		return GameType{Kind: KindNull}, nil
	}
	if s, ok := suitTokens[tok]; ok {
		return GameType{Kind: KindSuit, Trump: s}, nil
	}
	return GameType{}, fmt.Errorf("%w: %q", ErrInvalidDeclaration, token)
}

// Token is the declaration token for the game type; ParseGameType(Token()) is
// the identity.
func (g GameType) Token() string {
	switch g.Kind {
	case KindGrand:
		return "grand"
	case KindNull:
		return "null"
	default:
		return strings.ToLower(g.Trump.Name())
	}
}

// String is the human readable descriptor used in announcements and the log.
func (g GameType) String() string {
	switch g.Kind {
	case KindGrand:
		return "Grand"
	case KindNull:
		return "Null"
	default:
		return g.Trump.Name()
	}
}

// Play is one card laid by one participant.
type Play struct {
	PlayerID int
	Card     models.Card
}

// Trick is the plays of one round in play order.
type Trick []Play

// Cards returns the cards of the trick in play order.
func (t Trick) Cards() []models.Card {
	out := make([]models.Card, len(t))
	for i, p := range t {
		out[i] = p.Card
	}
	return out
}

// String renders the trick the way the game log expects: [(1, 7D), (2, JD), (3, JS)].
func (t Trick) String() string {
	parts := make([]string, len(t))
	for i, p := range t {
		parts[i] = fmt.Sprintf("(%d, %s)", p.PlayerID, p.Card)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Rules evaluates cards for one declared game. It keeps no state between calls.
type Rules struct {
	Declarer int
	Type     GameType
}

// New builds the rules for a declarer and a declaration token.
func New(declarer int, token string) (*Rules, error) {
	gt, err := ParseGameType(token)
	if err != nil {
		return nil, err
	}
	return &Rules{Declarer: declarer, Type: gt}, nil
}

func (r *Rules) String() string {
	return r.Type.String()
}

// suit and grand games rank plain cards A, 10, K, Q, 9, 8, 7
var trickOrder = map[models.Rank]int{
	models.Seven: 0, models.Eight: 1, models.Nine: 2, models.Queen: 3,
	models.King: 4, models.Ten: 5, models.Ace: 6,
}

// null games use the natural order A, K, Q, J, 10, 9, 8, 7
var nullOrder = map[models.Rank]int{
	models.Seven: 0, models.Eight: 1, models.Nine: 2, models.Ten: 3,
	models.Jack: 4, models.Queen: 5, models.King: 6, models.Ace: 7,
}

const jackBase = 20

// RankAndTrump reports whether c is trump in this game and its strength. Strengths
// are only comparable between two trumps or two plain cards of the same suit.
func (r *Rules) RankAndTrump(c models.Card) (bool, int) {
	if r.Type.Kind == KindNull {
		return false, nullOrder[c.Rank]
	}
	if c.Rank == models.Jack {
		return true, jackBase + int(c.Suit)
	}
	if r.Type.Kind == KindSuit && c.Suit == r.Type.Trump {
		return true, trickOrder[c.Rank]
	}
	return false, trickOrder[c.Rank]
}

// IsTrump is a shorthand for the first result of RankAndTrump.
func (r *Rules) IsTrump(c models.Card) bool {
	trump, _ := r.RankAndTrump(c)
	return trump
}

// beats reports whether challenger takes the trick from the current best card,
// given the suit that was led.
func (r *Rules) beats(challenger, best models.Card, led models.Suit) bool {
	cTrump, cStrength := r.RankAndTrump(challenger)
	bTrump, bStrength := r.RankAndTrump(best)
	switch {
	case cTrump && !bTrump:
		return true
	case !cTrump && bTrump:
		return false
	case cTrump && bTrump:
		return cStrength > bStrength
	}
	// two plain cards: the best one already follows the led suit
	return challenger.Suit == led && cStrength > bStrength
}

// Winner returns the id of the participant who takes the trick.
func (r *Rules) Winner(t Trick) (int, error) {
	if len(t) != TrickSize {
		return 0, fmt.Errorf("%w: got %d", ErrIncompleteTrick, len(t))
	}
	led := t[0].Card.Suit
	best := t[0]
	for _, p := range t[1:] {
		if r.beats(p.Card, best.Card, led) {
			best = p
		}
	}
	return best.PlayerID, nil
}

// TotalPoints is the value of the whole deck.
const TotalPoints = 120

var points = map[models.Rank]int{
	models.Ace: 11, models.Ten: 10, models.King: 4, models.Queen: 3, models.Jack: 2,
}

// CardPoints is the fixed point value of a single card.
func CardPoints(c models.Card) int {
	return points[c.Rank]
}

// CountPoints sums the card values of a pile; the full deck is worth TotalPoints.
func (r *Rules) CountPoints(cards []models.Card) int {
	return CountPoints(cards)
}

// CountPoints is the game-independent form of Rules.CountPoints.
func CountPoints(cards []models.Card) int {
	sum := 0
	for _, c := range cards {
		sum += CardPoints(c)
	}
	return sum
}
