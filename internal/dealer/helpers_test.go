package dealer

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/randstream"
)

var (
	testEntropy = bytes.Repeat([]byte{0x3c, 0xc3}, 16)
	testNow     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func seats(keys ...string) []Seat {
	out := make([]Seat, len(keys))
	for i, k := range keys {
		out[i] = Seat{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(k)),
			Username:  "user-" + k,
			PublicKey: k,
		}
	}
	return out
}

func numberedSeats(n int) []Seat {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("pk%d", i)
	}
	return seats(keys...)
}

func newTable(t *testing.T, discipline Discipline, keys ...string) *Table {
	t.Helper()
	counter := randstream.CounterFrom(100)
	table, err := StartHand(testEntropy, &counter, HandConfig{
		TableID:    1,
		HandRef:    77,
		Seats:      seats(keys...),
		Discipline: discipline,
		Now:        testNow,
	})
	require.NoError(t, err)
	return table
}
