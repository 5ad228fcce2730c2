package dealer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/deck"
)

const (
	MinPlayers = 2
	MaxPlayers = 9
	HoleCards  = 2
)

// Seat is a player as supplied when a hand starts.
type Seat struct {
	ID        uuid.UUID `json:"player_id"`
	Username  string    `json:"username"`
	PublicKey string    `json:"public_key"`
}

// Player is a seated player with everything dealt to them.
type Player struct {
	ID         uuid.UUID            `json:"player_id"`
	Username   string               `json:"username"`
	PublicKey  string               `json:"public_key"`
	Hand       [HoleCards]deck.Card `json:"hand"`
	HandSecret uint64               `json:"hand_secret,string"`
	FlopShare  uint64               `json:"flop_secret_share,string"`
	TurnShare  uint64               `json:"turn_secret_share,string"`
	RiverShare uint64               `json:"river_secret_share,string"`
}

// Share returns the player's share of the given street's secret.
func (p *Player) Share(street Phase) (uint64, bool) {
	switch street {
	case Flop:
		return p.FlopShare, true
	case Turn:
		return p.TurnShare, true
	case River:
		return p.RiverShare, true
	}
	return 0, false
}

// Street is one community-card group and its viewing key.
type Street struct {
	Cards      []deck.Card `json:"cards"`
	Secret     uint64      `json:"secret,string"`
	RevealedAt *time.Time  `json:"revealed_at,omitempty"`
}

func (s *Street) stamp(now time.Time) {
	if s.RevealedAt == nil {
		t := now
		s.RevealedAt = &t
	}
}

// Table is one hand at one table id.
type Table struct {
	ID         uint32     `json:"table_id"`
	HandRef    uint32     `json:"hand_ref"`
	Phase      Phase      `json:"phase"`
	Discipline Discipline `json:"discipline"`
	Players    []Player   `json:"players"`
	Flop       Street     `json:"flop"`
	Turn       Street     `json:"turn"`
	River      Street     `json:"river"`
	StartedAt  time.Time  `json:"started_at"`
	ShowdownAt *time.Time `json:"showdown_at,omitempty"`
}

// Street returns the record for a street phase.
func (t *Table) Street(p Phase) (*Street, error) {
	switch p {
	case Flop:
		return &t.Flop, nil
	case Turn:
		return &t.Turn, nil
	case River:
		return &t.River, nil
	}
	return nil, fmt.Errorf("%w: table %d: %s is not a street", ErrInvalidGameState, t.ID, p)
}

// Board returns flop, turn and river cards in order.
func (t *Table) Board() []deck.Card {
	board := make([]deck.Card, 0, 5)
	board = append(board, t.Flop.Cards...)
	board = append(board, t.Turn.Cards...)
	return append(board, t.River.Cards...)
}

// PlayerByKey finds a player by public key.
func (t *Table) PlayerByKey(publicKey string) (*Player, error) {
	for i := range t.Players {
		if t.Players[i].PublicKey == publicKey {
			return &t.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: table %d: public key %q", ErrPlayerNotFound, t.ID, publicKey)
}

// PlayerByID finds a player by player id.
func (t *Table) PlayerByID(id uuid.UUID) (*Player, error) {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: table %d: player %s", ErrPlayerNotFound, t.ID, id)
}

// Clone returns a deep copy so a failed operation can be discarded.
func (t *Table) Clone() *Table {
	c := *t
	c.Players = append([]Player(nil), t.Players...)
	c.Flop = t.Flop.clone()
	c.Turn = t.Turn.clone()
	c.River = t.River.clone()
	if t.ShowdownAt != nil {
		at := *t.ShowdownAt
		c.ShowdownAt = &at
	}
	return &c
}

func (s Street) clone() Street {
	c := s
	c.Cards = append([]deck.Card(nil), s.Cards...)
	if s.RevealedAt != nil {
		at := *s.RevealedAt
		c.RevealedAt = &at
	}
	return c
}
