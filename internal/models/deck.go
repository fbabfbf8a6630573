// internal/models/deck.go
package models

import (
	"fmt"
	"math/rand"
)

const (
	DeckSize = 32
	HandSize = 10
	SkatSize = 2
)

// NewDeck returns the 32 Skat cards in suit then rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle permutes the deck in place with r.
func Shuffle(deck []Card, r *rand.Rand) {
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// Deal splits a full deck into three sorted 10-card hands and the 2-card skat,
// in deck order: cards 0-9, 10-19, 20-29 and 30-31.
func Deal(deck []Card) ([3]Hand, Hand, error) {
	var hands [3]Hand
	if len(deck) != DeckSize {
		return hands, nil, fmt.Errorf("deal needs %d cards, got %d", DeckSize, len(deck))
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		if !c.Valid() {
			return hands, nil, fmt.Errorf("%w: %v", ErrInvalidCard, c)
		}
		if seen[c] {
			return hands, nil, fmt.Errorf("duplicate card in deck: %s", c)
		}
		seen[c] = true
	}
	for i := range hands {
		hands[i] = Hand(deck[i*HandSize : (i+1)*HandSize]).Clone()
		hands[i].Sort()
	}
	skat := Hand(deck[3*HandSize:]).Clone()
	return hands, skat, nil
}
