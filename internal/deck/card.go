package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is the high nibble of a Card.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

// String returns the single-letter suit code
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit glyph
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank is the low nibble of a Card. Aces are low (1).
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

const rankChars = "A23456789TJQK"

// String returns the single-character rank code
func (r Rank) String() string {
	if r < Ace || r > King {
		return "?"
	}
	return string(rankChars[r-1])
}

// Card packs a suit and a rank into one byte: suit<<4 | rank.
type Card uint8

// NewCard builds a card, rejecting out-of-range suits and ranks.
func NewCard(suit Suit, rank Rank) (Card, error) {
	if suit > Spades {
		return 0, fmt.Errorf("deck: invalid suit %d", suit)
	}
	if rank < Ace || rank > King {
		return 0, fmt.Errorf("deck: invalid rank %d", rank)
	}
	return Card(uint8(suit)<<4 | uint8(rank)), nil
}

// MustCard is NewCard for constants known to be valid.
func MustCard(suit Suit, rank Rank) Card {
	c, err := NewCard(suit, rank)
	if err != nil {
		panic(err)
	}
	return c
}

// Suit returns the card's suit
func (c Card) Suit() Suit {
	return Suit(uint8(c) >> 4)
}

// Rank returns the card's rank
func (c Card) Rank() Rank {
	return Rank(uint8(c) & 0x0f)
}

// Valid reports whether the byte encodes one of the 52 cards.
func (c Card) Valid() bool {
	return c.Suit() <= Spades && c.Rank() >= Ace && c.Rank() <= King
}

// String returns the two-character form, e.g. "As" or "Td"
func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("?%02x", uint8(c))
	}
	return c.Rank().String() + c.Suit().String()
}

// MarshalJSON encodes the card as its byte value. Implementing it also keeps
// []Card encoding as a JSON array instead of base64.
func (c Card) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(c), 10), nil
}

// UnmarshalJSON decodes a byte value and validates it.
func (c *Card) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		return fmt.Errorf("deck: invalid card %s: %w", data, err)
	}
	card := Card(v)
	if !card.Valid() {
		return fmt.Errorf("deck: invalid card value %d", v)
	}
	*c = card
	return nil
}

// ParseCard parses the two-character form, case-insensitively.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("deck: invalid card %q", s)
	}
	r := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if r < 0 {
		return 0, fmt.Errorf("deck: invalid rank in %q", s)
	}
	su := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if su < 0 {
		return 0, fmt.Errorf("deck: invalid suit in %q", s)
	}
	return NewCard(Suit(su), Rank(r+1))
}

// ParseCards parses a concatenated list such as "AsKdTc".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("deck: odd length card list %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Strings formats each card with String.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
