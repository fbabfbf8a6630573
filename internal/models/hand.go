// internal/models/hand.go
package models

import (
	"slices"
	"strings"
)

// Hand is an ordered sequence of cards held by one seat.
type Hand []Card

// ParseHand parses a whitespace or comma separated list of card tokens.
func ParseHand(s string) (Hand, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	h := make(Hand, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		h = append(h, c)
	}
	return h, nil
}

// MustParseHand is ParseHand for fixtures; it panics on bad input.
func MustParseHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return h
}

// Sort orders the hand by suit, then by natural rank.
func (h Hand) Sort() {
	slices.SortFunc(h, func(a, b Card) int {
		if a.Suit != b.Suit {
			return int(a.Suit) - int(b.Suit)
		}
		return int(a.Rank) - int(b.Rank)
	})
}

// Contains reports whether c is in the hand.
func (h Hand) Contains(c Card) bool {
	return slices.Contains(h, c)
}

// Remove deletes the first occurrence of c, keeping the order of the rest.
// It reports whether the card was present.
func (h *Hand) Remove(c Card) bool {
	i := slices.Index(*h, c)
	if i < 0 {
		return false
	}
	*h = slices.Delete(*h, i, i+1)
	return true
}

// Clone returns an independent copy of the hand.
func (h Hand) Clone() Hand {
	return slices.Clone(h)
}

// String renders the hand as "[JC, TH, 7D]".
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
