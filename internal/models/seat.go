// internal/models/seat.go
package models

// Seat is the per-participant state the server keeps for one game: identity,
// the cards in hand, and every card captured so far.
type Seat struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Hand     Hand   `json:"hand"`
	CardsWon []Card `json:"cardsWon"`
}

// NewSeat builds a seat holding hand.
func NewSeat(id int, name string, hand Hand) *Seat {
	return &Seat{ID: id, Name: name, Hand: hand, CardsWon: []Card{}}
}
