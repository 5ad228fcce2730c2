// Package deck implements the 52-card deck, its byte card encoding and the
// seeded Fisher-Yates shuffles used to deal a hand.
package deck

import (
	"errors"
	"fmt"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("deck: exhausted")

// Deck is a fixed 52-card deck consumed front-to-back through a cursor.
type Deck struct {
	cards [Size]Card
	next  int
}

// New returns the canonical deck: suit-major, rank-ascending.
func New() *Deck {
	d := &Deck{}
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards[i] = MustCard(suit, rank)
			i++
		}
	}
	return d
}

// Cards returns a copy of the full deck order, dealt cards included.
func (d *Deck) Cards() []Card {
	out := make([]Card, Size)
	copy(out, d.cards[:])
	return out
}

// Deal consumes n cards from the front of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > Size {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, d.Remaining())
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out, nil
}

// DealOne consumes a single card
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return 0, err
	}
	return cards[0], nil
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return Size - d.next
}
