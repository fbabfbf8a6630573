// internal/models/card.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a card token cannot be parsed.
var ErrInvalidCard = errors.New("invalid card")

// Suit is one of the four French suits. The ascending order doubles as the
// fixed Jack precedence: Diamonds < Hearts < Spades < Clubs.
type Suit int

const (
	Diamonds Suit = iota
	Hearts
	Spades
	Clubs
)

// Suits lists every suit in ascending order.
var Suits = []Suit{Diamonds, Hearts, Spades, Clubs}

var suitTokens = map[Suit]string{Diamonds: "D", Hearts: "H", Spades: "S", Clubs: "C"}

var suitNames = map[Suit]string{Diamonds: "Diamonds", Hearts: "Hearts", Spades: "Spades", Clubs: "Clubs"}

// String returns the single letter token of the suit.
func (s Suit) String() string {
	if t, ok := suitTokens[s]; ok {
		return t
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

// Name returns the English name of the suit ("Clubs").
func (s Suit) Name() string {
	return suitNames[s]
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	_, ok := suitTokens[s]
	return ok
}

// Rank is the face of a card in a 32-card Skat deck, in natural order.
type Rank int

const (
	Seven Rank = iota
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank in natural order.
var Ranks = []Rank{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankTokens = map[Rank]string{
	Seven: "7", Eight: "8", Nine: "9", Ten: "T",
	Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

// String returns the single character token of the rank ("T" for ten).
func (r Rank) String() string {
	if t, ok := rankTokens[r]; ok {
		return t
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// Valid reports whether r is one of the eight ranks.
func (r Rank) Valid() bool {
	_, ok := rankTokens[r]
	return ok
}

// Card is an immutable playing card value.
type Card struct {
	Suit Suit
	Rank Rank
}

// String renders the card as rank followed by suit, e.g. "JC" or "TH".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Valid reports whether both suit and rank are in range.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// ParseCard parses the token produced by Card.String. "10" is accepted for ten
// and matching is case-insensitive.
func ParseCard(s string) (Card, error) {
	tok := strings.ToUpper(strings.TrimSpace(s))
	tok = strings.Replace(tok, "10", "T", 1)
	if len(tok) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	var c Card
	rankOK, suitOK := false, false
	for r, t := range rankTokens {
		if t == tok[:1] {
			c.Rank, rankOK = r, true
		}
	}
	for su, t := range suitTokens {
		if t == tok[1:] {
			c.Suit, suitOK = su, true
		}
	}
	if !rankOK || !suitOK {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return c, nil
}

// MustParseCard is ParseCard for fixtures; it panics on bad input.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}
