package dealer

import (
	"fmt"
	"time"

	"github.com/lox/pokerdealer/internal/deck"
	"github.com/lox/pokerdealer/internal/randstream"
	"github.com/lox/pokerdealer/internal/sharing"
)

// HandConfig describes a hand to deal.
type HandConfig struct {
	TableID    uint32
	HandRef    uint32
	Seats      []Seat
	Discipline Discipline
	Shuffle    ShuffleMode
	Now        time.Time
}

// Validate checks the seat list without drawing anything.
func (c HandConfig) Validate() error {
	n := len(c.Seats)
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: table %d: %d players, want %d-%d",
			ErrInvalidPlayerCount, c.TableID, n, MinPlayers, MaxPlayers)
	}
	seen := make(map[string]struct{}, n)
	for _, s := range c.Seats {
		if _, dup := seen[s.PublicKey]; dup {
			return fmt.Errorf("%w: table %d: public key %q",
				ErrDuplicateIdentifiers, c.TableID, s.PublicKey)
		}
		seen[s.PublicKey] = struct{}{}
	}
	return nil
}

// StartHand deals a new hand from entropy. The counter is advanced only when
// the hand is dealt successfully.
//
// Draw order is fixed: the shuffle, then flop, turn and river secrets (each
// split into one share per player), then one hand secret per player in seat
// order. Cards are consumed hole cards first, then flop, turn, river.
func StartHand(entropy []byte, counter *randstream.Counter, cfg HandConfig) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	working := *counter
	stream, err := randstream.New(entropy, &working)
	if err != nil {
		return nil, err
	}

	d := deck.New()
	switch cfg.Shuffle {
	case Streamed:
		d.ShuffleStream(stream)
	default:
		d.Shuffle(stream.Next())
	}

	t := &Table{
		ID:         cfg.TableID,
		HandRef:    cfg.HandRef,
		Phase:      PreFlop,
		Discipline: cfg.Discipline,
		Players:    make([]Player, len(cfg.Seats)),
		StartedAt:  cfg.Now,
	}

	for i, s := range cfg.Seats {
		hole, err := d.Deal(HoleCards)
		if err != nil {
			return nil, err
		}
		t.Players[i] = Player{
			ID:        s.ID,
			Username:  s.Username,
			PublicKey: s.PublicKey,
			Hand:      [HoleCards]deck.Card{hole[0], hole[1]},
		}
	}

	for _, street := range []struct {
		phase Phase
		size  int
	}{{Flop, 3}, {Turn, 1}, {River, 1}} {
		cards, err := d.Deal(street.size)
		if err != nil {
			return nil, err
		}
		st, _ := t.Street(street.phase)
		st.Cards = cards
	}

	n := len(t.Players)
	for _, phase := range []Phase{Flop, Turn, River} {
		st, _ := t.Street(phase)
		st.Secret = stream.Next()
		shares, err := sharing.Split(st.Secret, n, stream)
		if err != nil {
			return nil, err
		}
		for i := range t.Players {
			p := &t.Players[i]
			switch phase {
			case Flop:
				p.FlopShare = shares[i]
			case Turn:
				p.TurnShare = shares[i]
			case River:
				p.RiverShare = shares[i]
			}
		}
	}

	// Hand secrets are showdown lookup keys, so they must be distinct.
	used := make(map[uint64]struct{}, n)
	for i := range t.Players {
		secret := stream.Next()
		for _, dup := used[secret]; dup; _, dup = used[secret] {
			secret = stream.Next()
		}
		used[secret] = struct{}{}
		t.Players[i].HandSecret = secret
	}

	*counter = working
	return t, nil
}
