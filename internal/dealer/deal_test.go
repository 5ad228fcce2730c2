package dealer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/deck"
	"github.com/lox/pokerdealer/internal/randstream"
	"github.com/lox/pokerdealer/internal/sharing"
)

func TestStartHandDealsDistinctCards(t *testing.T) {
	t.Parallel()

	for _, mode := range []ShuffleMode{Seeded, Streamed} {
		for n := MinPlayers; n <= MaxPlayers; n++ {
			counter := randstream.CounterFrom(uint64(n))
			table, err := StartHand(testEntropy, &counter, HandConfig{
				TableID: 3,
				Seats:   numberedSeats(n),
				Shuffle: mode,
				Now:     testNow,
			})
			require.NoError(t, err)
			require.Len(t, table.Players, n)

			canonical := make(map[deck.Card]bool)
			for _, c := range deck.New().Cards() {
				canonical[c] = true
			}

			seen := make(map[deck.Card]bool)
			add := func(cards ...deck.Card) {
				for _, c := range cards {
					assert.True(t, canonical[c], "card %s not in deck", c)
					assert.False(t, seen[c], "card %s dealt twice", c)
					seen[c] = true
				}
			}
			for _, p := range table.Players {
				add(p.Hand[:]...)
			}
			assert.Len(t, table.Flop.Cards, 3)
			assert.Len(t, table.Turn.Cards, 1)
			assert.Len(t, table.River.Cards, 1)
			add(table.Board()...)
			assert.Len(t, seen, 2*n+5)
		}
	}
}

func TestStartHandSharesReconstructStreetSecrets(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b", "c", "d")
	for _, phase := range []Phase{Flop, Turn, River} {
		st, err := table.Street(phase)
		require.NoError(t, err)

		shares := make([]uint64, 0, len(table.Players))
		for _, p := range table.Players {
			s, ok := p.Share(phase)
			require.True(t, ok)
			shares = append(shares, s)
		}
		assert.True(t, sharing.Verify(st.Secret, shares), "%s shares", phase)
	}

	secrets := make(map[uint64]bool)
	for _, p := range table.Players {
		assert.False(t, secrets[p.HandSecret], "hand secrets must be distinct")
		secrets[p.HandSecret] = true
	}
}

func TestStartHandFollowsDrawOrder(t *testing.T) {
	t.Parallel()

	const start = 500
	counter := randstream.CounterFrom(start)
	table, err := StartHand(testEntropy, &counter, HandConfig{TableID: 1, Seats: seats("a", "b", "c"), Now: testNow})
	require.NoError(t, err)

	draw := func(i uint64) uint64 { return randstream.Derive(testEntropy, randstream.CounterFrom(start+i)) }

	expected := deck.New()
	expected.Shuffle(draw(0))
	cards := expected.Cards()
	assert.Equal(t, [HoleCards]deck.Card{cards[0], cards[1]}, table.Players[0].Hand)
	assert.Equal(t, [HoleCards]deck.Card{cards[4], cards[5]}, table.Players[2].Hand)
	assert.Equal(t, cards[6:9], table.Flop.Cards)
	assert.Equal(t, cards[9:10], table.Turn.Cards)
	assert.Equal(t, cards[10:11], table.River.Cards)

	// seed, then (secret + 2 shares) per street, then 3 hand secrets
	assert.Equal(t, draw(1), table.Flop.Secret)
	assert.Equal(t, draw(2), table.Players[0].FlopShare)
	assert.Equal(t, draw(3), table.Players[1].FlopShare)
	assert.Equal(t, draw(4), table.Turn.Secret)
	assert.Equal(t, draw(7), table.River.Secret)
	assert.Equal(t, draw(10), table.Players[0].HandSecret)
	assert.Equal(t, draw(12), table.Players[2].HandSecret)
	assert.Equal(t, randstream.CounterFrom(start+13), counter)
}

func TestStartHandIsReproducible(t *testing.T) {
	t.Parallel()

	a := newTable(t, Progressive, "a", "b")
	b := newTable(t, Progressive, "a", "b")
	assert.Equal(t, a, b)
}

func TestStartHandRecordsHandMetadata(t *testing.T) {
	t.Parallel()

	table := newTable(t, Monotonic, "a", "b")
	assert.Equal(t, uint32(1), table.ID)
	assert.Equal(t, uint32(77), table.HandRef)
	assert.Equal(t, PreFlop, table.Phase)
	assert.Equal(t, Monotonic, table.Discipline)
	assert.Equal(t, testNow, table.StartedAt)
	assert.Nil(t, table.ShowdownAt)
	assert.Equal(t, "user-a", table.Players[0].Username)
}

func TestStartHandValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seats   []Seat
		entropy []byte
		wantErr error
	}{
		{"one player", numberedSeats(1), testEntropy, ErrInvalidPlayerCount},
		{"no players", nil, testEntropy, ErrInvalidPlayerCount},
		{"ten players", numberedSeats(10), testEntropy, ErrInvalidPlayerCount},
		{"duplicate keys", seats("a", "b", "a"), testEntropy, ErrDuplicateIdentifiers},
		{"missing entropy", seats("a", "b"), nil, randstream.ErrEntropyUnavailable},
		{"short entropy", seats("a", "b"), testEntropy[:8], randstream.ErrEntropyUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := randstream.CounterFrom(9)
			table, err := StartHand(tt.entropy, &counter, HandConfig{Seats: tt.seats, Now: testNow})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, table)
			assert.Equal(t, randstream.CounterFrom(9), counter, "counter must not advance")
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	_, err := Reveal(table, Flop, table.Flop.Secret, testNow)
	require.NoError(t, err)

	c := table.Clone()
	assert.Equal(t, table, c)

	c.Players[0].Username = "changed"
	c.Flop.Cards[0] = 0
	*c.Flop.RevealedAt = testNow.Add(1)
	assert.Equal(t, "user-a", table.Players[0].Username)
	assert.NotEqual(t, deck.Card(0), table.Flop.Cards[0])
	assert.Equal(t, testNow, *table.Flop.RevealedAt)
}
