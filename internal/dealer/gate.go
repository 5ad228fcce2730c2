package dealer

import (
	"fmt"
	"time"

	"github.com/lox/pokerdealer/internal/deck"
)

// Reveal returns a street's cards on a progressive table when key matches the
// street secret. The first successful reveal stamps the street; the table's
// phase is raised to the street if it was behind.
func Reveal(t *Table, street Phase, key uint64, now time.Time) ([]deck.Card, error) {
	if t.Discipline != Progressive {
		return nil, fmt.Errorf("%w: table %d: reveal on a %s table", ErrInvalidGameState, t.ID, t.Discipline)
	}
	st, err := t.Street(street)
	if err != nil {
		return nil, err
	}
	if key != st.Secret {
		return nil, fmt.Errorf("%w: table %d: %s", ErrInvalidViewingKey, t.ID, street)
	}
	st.stamp(now)
	if t.Phase < street {
		t.Phase = street
	}
	return append([]deck.Card(nil), st.Cards...), nil
}

// Advance moves a monotonic table to the requested phase, which must be the
// next one, and returns that street's cards.
func Advance(t *Table, requested Phase, now time.Time) ([]deck.Card, error) {
	if t.Discipline != Monotonic {
		return nil, fmt.Errorf("%w: table %d: advance on a %s table", ErrInvalidGameState, t.ID, t.Discipline)
	}
	next, ok := t.Phase.Next()
	if !ok || requested != next {
		return nil, &PhaseError{
			TableID:   t.ID,
			Current:   t.Phase,
			Requested: requested,
			Required:  next,
			Final:     !ok,
		}
	}
	st, err := t.Street(requested)
	if err != nil {
		return nil, err
	}
	st.stamp(now)
	t.Phase = requested
	return append([]deck.Card(nil), st.Cards...), nil
}
