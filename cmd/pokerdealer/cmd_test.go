package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/randstream"
)

func TestParseSeat(t *testing.T) {
	seat, err := parseSeat("alice=ed25519:abc")
	require.NoError(t, err)
	assert.Equal(t, dealer.Seat{Username: "alice", PublicKey: "ed25519:abc"}, seat)

	seat, err = parseSeat("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", seat.PublicKey)

	_, err = parseSeat("carol=")
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	id := uuid.New()
	ids, err := parseIDs([]string{id.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)

	_, err = parseIDs([]string{"not-a-uuid"})
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	counter := randstream.CounterFrom(7)
	table, err := dealer.StartHand([]byte(strings.Repeat("k", 32)), &counter, dealer.HandConfig{
		TableID: 12,
		HandRef: 3,
		Seats: []dealer.Seat{
			{ID: uuid.New(), Username: "alice", PublicKey: "a"},
			{ID: uuid.New(), Username: "bob", PublicKey: "b"},
		},
		Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	out := renderTable(table)
	assert.Contains(t, out, "Table 12")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "river")
}

func TestDealIsReproducible(t *testing.T) {
	deal := func() *dealer.Table {
		counter, err := randstream.ParseCounter("123456789012345678901234567890")
		require.NoError(t, err)
		table, err := dealer.StartHand([]byte(strings.Repeat("e", 32)), &counter, dealer.HandConfig{
			Seats: []dealer.Seat{{Username: "a", PublicKey: "a"}, {Username: "b", PublicKey: "b"}},
		})
		require.NoError(t, err)
		return table
	}
	assert.Equal(t, deal().Players[0].Hand, deal().Players[0].Hand)
}

func TestVerifyCmd(t *testing.T) {
	require.NoError(t, (&VerifyCmd{Secret: "10", Shares: []string{"3", "7"}}).Run())
	assert.Error(t, (&VerifyCmd{Secret: "10", Shares: []string{"3", "6"}}).Run())
	assert.Error(t, (&VerifyCmd{Secret: "ten"}).Run())
}

func TestHandLogCmdMissingFile(t *testing.T) {
	err := (&HandLogCmd{File: filepath.Join(t.TempDir(), "missing.toml")}).Run()
	assert.Error(t, err)
}
