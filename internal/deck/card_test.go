package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		suit Suit
		rank Rank
		want Card
		str  string
	}{
		{Clubs, Ace, 0x01, "Ac"},
		{Diamonds, Ten, 0x1a, "Td"},
		{Hearts, Queen, 0x2c, "Qh"},
		{Spades, King, 0x3d, "Ks"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			c, err := NewCard(tt.suit, tt.rank)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.suit, c.Suit())
			assert.Equal(t, tt.rank, c.Rank())
			assert.Equal(t, tt.str, c.String())
			assert.True(t, c.Valid())
		})
	}
}

func TestNewCardRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := NewCard(4, Ace)
	assert.Error(t, err)
	_, err = NewCard(Spades, 0)
	assert.Error(t, err)
	_, err = NewCard(Spades, 14)
	assert.Error(t, err)

	assert.False(t, Card(0x00).Valid())
	assert.False(t, Card(0x4e).Valid())
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("AsKd tc")
	require.NoError(t, err)
	assert.Equal(t, []Card{
		MustCard(Spades, Ace),
		MustCard(Diamonds, King),
		MustCard(Clubs, Ten),
	}, cards)

	_, err = ParseCards("Xs")
	assert.Error(t, err)
	_, err = ParseCards("Ax")
	assert.Error(t, err)
	_, err = ParseCards("AsK")
	assert.Error(t, err)
}

func TestCardJSONIsNumericArray(t *testing.T) {
	t.Parallel()

	cards := []Card{MustCard(Clubs, Ace), MustCard(Spades, King)}
	data, err := json.Marshal(cards)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 61]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cards, decoded)

	var bad Card
	assert.Error(t, json.Unmarshal([]byte(`78`), &bad))
}
