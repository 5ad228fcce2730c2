package dealer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/deck"
)

// ShowdownRequest carries the secrets a caller surrenders. Street keys are
// optional; AllIn skips them and returns the streets the table has not
// reached instead.
type ShowdownRequest struct {
	FlopKey    *uint64
	TurnKey    *uint64
	RiverKey   *uint64
	PlayerKeys []uint64
	AllIn      bool
}

// PlayerHand is one player's disclosed hole cards.
type PlayerHand struct {
	PlayerID  uuid.UUID            `json:"player_id"`
	Username  string               `json:"username"`
	PublicKey string               `json:"public_key"`
	Cards     [HoleCards]deck.Card `json:"cards"`
}

// ShowdownResult is what a showdown discloses. Board holds streets unlocked
// by key; Remaining holds the all-in runout.
type ShowdownResult struct {
	Hands     []PlayerHand `json:"hands"`
	Board     []deck.Card  `json:"board,omitempty"`
	Remaining []deck.Card  `json:"remaining,omitempty"`
}

// Showdown verifies every supplied key before touching the table, so a bad
// key leaves all timestamps as they were. Without AllIn at least one hand
// secret is required. On a monotonic table a street key is refused until the
// owner has advanced to that street.
func Showdown(t *Table, req ShowdownRequest, now time.Time) (*ShowdownResult, error) {
	if !req.AllIn && len(req.PlayerKeys) == 0 {
		return nil, fmt.Errorf("%w: table %d: no hand secrets supplied", ErrSecretNotFound, t.ID)
	}
	res := &ShowdownResult{Hands: make([]PlayerHand, 0, len(req.PlayerKeys))}

	var unlocked []*Street
	if !req.AllIn {
		keys := []struct {
			phase Phase
			key   *uint64
		}{{Flop, req.FlopKey}, {Turn, req.TurnKey}, {River, req.RiverKey}}
		for _, k := range keys {
			if k.key == nil {
				continue
			}
			if t.Discipline == Monotonic && k.phase > t.Phase {
				return nil, fmt.Errorf("%w: table %d: %s not reached, hand is at %s",
					ErrInvalidGameState, t.ID, k.phase, t.Phase)
			}
			st, _ := t.Street(k.phase)
			if *k.key != st.Secret {
				return nil, fmt.Errorf("%w: table %d: %s", ErrInvalidViewingKey, t.ID, k.phase)
			}
			unlocked = append(unlocked, st)
		}
	}

	for _, key := range req.PlayerKeys {
		p, err := playerBySecret(t, key)
		if err != nil {
			return nil, err
		}
		res.Hands = append(res.Hands, handOf(p))
	}

	if req.AllIn {
		remaining, err := AllIn(t, t.Phase)
		if err != nil {
			return nil, err
		}
		res.Remaining = remaining
	}

	for _, st := range unlocked {
		st.stamp(now)
		res.Board = append(res.Board, st.Cards...)
	}
	stampShowdown(t, now)
	return res, nil
}

// ShowdownByPlayerIDs is the owner's showdown: players are named by id and
// the all-in runout for phase is always attached.
func ShowdownByPlayerIDs(t *Table, ids []uuid.UUID, phase Phase, now time.Time) (*ShowdownResult, error) {
	res := &ShowdownResult{Hands: make([]PlayerHand, 0, len(ids))}
	for _, id := range ids {
		p, err := t.PlayerByID(id)
		if err != nil {
			return nil, err
		}
		res.Hands = append(res.Hands, handOf(p))
	}
	remaining, err := AllIn(t, phase)
	if err != nil {
		return nil, err
	}
	res.Remaining = remaining
	stampShowdown(t, now)
	return res, nil
}

// AllIn returns every street not yet reached at phase, in board order.
func AllIn(t *Table, phase Phase) ([]deck.Card, error) {
	if phase > River {
		return nil, fmt.Errorf("%w: table %d: %s", ErrInvalidGameState, t.ID, phase)
	}
	remaining := []deck.Card{}
	for _, street := range []Phase{Flop, Turn, River} {
		if street <= phase {
			continue
		}
		st, _ := t.Street(street)
		remaining = append(remaining, st.Cards...)
	}
	return remaining, nil
}

func playerBySecret(t *Table, key uint64) (*Player, error) {
	for i := range t.Players {
		if t.Players[i].HandSecret == key {
			return &t.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: table %d", ErrSecretNotFound, t.ID)
}

func handOf(p *Player) PlayerHand {
	return PlayerHand{
		PlayerID:  p.ID,
		Username:  p.Username,
		PublicKey: p.PublicKey,
		Cards:     p.Hand,
	}
}

func stampShowdown(t *Table, now time.Time) {
	if t.ShowdownAt == nil {
		at := now
		t.ShowdownAt = &at
	}
}
