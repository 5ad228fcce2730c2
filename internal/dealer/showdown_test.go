package dealer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/deck"
)

func ptr[T any](v T) *T { return &v }

func TestShowdownRevealsOnlyNamedPlayer(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "A", "B")
	b := table.Players[1]

	res, err := Showdown(table, ShowdownRequest{PlayerKeys: []uint64{b.HandSecret}}, testNow)
	require.NoError(t, err)
	require.Len(t, res.Hands, 1)
	assert.Equal(t, "B", res.Hands[0].PublicKey)
	assert.Equal(t, b.Hand, res.Hands[0].Cards)
	assert.Empty(t, res.Board)
	assert.Empty(t, res.Remaining)
	assert.Equal(t, testNow, *table.ShowdownAt)
}

func TestShowdownPreservesRequestOrder(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b", "c")
	keys := []uint64{table.Players[2].HandSecret, table.Players[0].HandSecret}

	res, err := Showdown(table, ShowdownRequest{PlayerKeys: keys}, testNow)
	require.NoError(t, err)
	require.Len(t, res.Hands, 2)
	assert.Equal(t, "c", res.Hands[0].PublicKey)
	assert.Equal(t, "a", res.Hands[1].PublicKey)
}

func TestShowdownWithStreetKeys(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	req := ShowdownRequest{
		RiverKey:   ptr(table.River.Secret),
		FlopKey:    ptr(table.Flop.Secret),
		PlayerKeys: []uint64{table.Players[0].HandSecret},
	}

	res, err := Showdown(table, req, testNow)
	require.NoError(t, err)
	want := append(append([]deck.Card{}, table.Flop.Cards...), table.River.Cards...)
	assert.Equal(t, want, res.Board)
	assert.NotNil(t, table.Flop.RevealedAt)
	assert.Nil(t, table.Turn.RevealedAt)
	assert.NotNil(t, table.River.RevealedAt)
}

func TestShowdownFailuresLeaveTableUntouched(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	before := table.Clone()

	_, err := Showdown(table, ShowdownRequest{
		FlopKey:    ptr(table.Flop.Secret),
		TurnKey:    ptr(table.Turn.Secret + 1),
		PlayerKeys: []uint64{table.Players[0].HandSecret},
	}, testNow)
	assert.ErrorIs(t, err, ErrInvalidViewingKey)
	assert.Equal(t, before, table)

	_, err = Showdown(table, ShowdownRequest{
		FlopKey:    ptr(table.Flop.Secret),
		PlayerKeys: []uint64{table.Flop.Secret},
	}, testNow)
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, before, table)
}

func TestShowdownTimestampFirstWins(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	req := ShowdownRequest{PlayerKeys: []uint64{table.Players[0].HandSecret}}
	_, err := Showdown(table, req, testNow)
	require.NoError(t, err)
	_, err = Showdown(table, req, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, testNow, *table.ShowdownAt)
}

func TestShowdownRequiresHandSecret(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	before := table.Clone()

	for name, req := range map[string]ShowdownRequest{
		"nothing":          {},
		"street keys only": {FlopKey: ptr(table.Flop.Secret)},
	} {
		_, err := Showdown(table, req, testNow)
		assert.ErrorIs(t, err, ErrSecretNotFound, name)
	}
	assert.Equal(t, before, table)
	assert.Nil(t, table.ShowdownAt)
}

func TestAllInAtPreFlopReturnsWholeBoard(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")

	res, err := Showdown(table, ShowdownRequest{AllIn: true}, testNow)
	require.NoError(t, err)
	require.Len(t, res.Remaining, 5)
	assert.Equal(t, table.Board(), res.Remaining)
	assert.Equal(t, table.Flop.Cards, res.Remaining[:3])
	assert.Equal(t, table.Turn.Cards, res.Remaining[3:4])
	assert.Equal(t, table.River.Cards, res.Remaining[4:])
}

func TestAllInBypassesStreetKeys(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	table.Phase = Flop
	res, err := Showdown(table, ShowdownRequest{
		AllIn:   true,
		FlopKey: ptr(table.Flop.Secret + 1),
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, append(append([]deck.Card{}, table.Turn.Cards...), table.River.Cards...), res.Remaining)
	assert.Empty(t, res.Board)
	assert.Nil(t, table.Flop.RevealedAt)
}

func TestAllInUsesTablePhase(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	_, err := Reveal(table, Turn, table.Turn.Secret, testNow)
	require.NoError(t, err)

	res, err := Showdown(table, ShowdownRequest{AllIn: true}, testNow)
	require.NoError(t, err)
	assert.Equal(t, table.River.Cards, res.Remaining)
}

func TestAllInByPhase(t *testing.T) {
	t.Parallel()

	table := newTable(t, Monotonic, "a", "b")
	tests := []struct {
		phase Phase
		want  int
	}{{PreFlop, 5}, {Flop, 2}, {Turn, 1}, {River, 0}}

	for _, tt := range tests {
		cards, err := AllIn(table, tt.phase)
		require.NoError(t, err)
		assert.Len(t, cards, tt.want, tt.phase.String())
	}

	_, err := AllIn(table, Phase(9))
	assert.ErrorIs(t, err, ErrInvalidGameState)
}

func TestShowdownByPlayerIDs(t *testing.T) {
	t.Parallel()

	table := newTable(t, Monotonic, "a", "b", "c")
	ids := []uuid.UUID{table.Players[1].ID}

	res, err := ShowdownByPlayerIDs(table, ids, Turn, testNow)
	require.NoError(t, err)
	require.Len(t, res.Hands, 1)
	assert.Equal(t, table.Players[1].Hand, res.Hands[0].Cards)
	assert.Equal(t, table.River.Cards, res.Remaining)
	assert.Equal(t, testNow, *table.ShowdownAt)

	fresh := newTable(t, Monotonic, "a", "b")
	_, err = ShowdownByPlayerIDs(fresh, []uuid.UUID{uuid.New()}, PreFlop, testNow)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.Nil(t, fresh.ShowdownAt)
}

func TestLastHandLog(t *testing.T) {
	t.Parallel()

	table := newTable(t, Monotonic, "a", "b")
	_, err := Advance(table, Flop, testNow)
	require.NoError(t, err)
	_, err = ShowdownByPlayerIDs(table, []uuid.UUID{table.Players[0].ID}, Flop, testNow.Add(time.Minute))
	require.NoError(t, err)

	entry, err := NewLastHandLog(table, []uuid.UUID{table.Players[0].ID})
	require.NoError(t, err)
	assert.Equal(t, uint32(77), entry.HandRef)
	require.Len(t, entry.ShowdownPlayers, 1)
	assert.Equal(t, "user-a", entry.ShowdownPlayers[0].Username)
	assert.Equal(t, deck.Strings(table.Players[0].Hand[:]), entry.ShowdownPlayers[0].Hand)
	assert.Equal(t, deck.Strings(table.Board()), entry.CommunityCards)
	assert.Equal(t, testNow, *entry.FlopRevealedAt)
	assert.Nil(t, entry.TurnRevealedAt)
	assert.Equal(t, testNow.Add(time.Minute), *entry.ShowdownAt)

	_, err = NewLastHandLog(table, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestTableJSONKeepsSecretsExact(t *testing.T) {
	t.Parallel()

	table := newTable(t, Progressive, "a", "b")
	data, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded Table
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, table.Players, decoded.Players)
	assert.Equal(t, table.Flop.Secret, decoded.Flop.Secret)
	assert.Equal(t, "progressive", func() string {
		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		return raw["discipline"].(string)
	}())
}
