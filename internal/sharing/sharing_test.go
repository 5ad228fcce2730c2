package sharing

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/randstream"
)

type countingSource struct {
	draws int
	next  func() uint64
}

func (s *countingSource) Next() uint64 {
	s.draws++
	return s.next()
}

func TestSplitReconstructs(t *testing.T) {
	t.Parallel()

	secrets := []uint64{0, 1, 0x0123456789abcdef, math.MaxUint64}

	for n := 1; n <= 9; n++ {
		for _, secret := range secrets {
			counter := randstream.CounterFrom(uint64(n))
			stream, err := randstream.New(bytes.Repeat([]byte{byte(n)}, 32), &counter)
			require.NoError(t, err)

			shares, err := Split(secret, n, stream)
			require.NoError(t, err)
			require.Len(t, shares, n)
			assert.Equal(t, secret, Combine(shares), "n=%d secret=%d", n, secret)
			assert.True(t, Verify(secret, shares))
		}
	}
}

func TestSplitDrawsNMinusOne(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 9; n++ {
		src := &countingSource{next: func() uint64 { return math.MaxUint64 }}
		_, err := Split(42, n, src)
		require.NoError(t, err)
		assert.Equal(t, n-1, src.draws)
	}
}

func TestSplitSingleShareIsSecret(t *testing.T) {
	t.Parallel()

	src := &countingSource{next: func() uint64 { return 7 }}
	shares, err := Split(12345, 1, src)
	require.NoError(t, err)
	assert.Equal(t, []uint64{12345}, shares)
	assert.Zero(t, src.draws)
}

func TestSplitWrapsAround(t *testing.T) {
	t.Parallel()

	src := &countingSource{next: func() uint64 { return math.MaxUint64 }}
	shares, err := Split(0, 3, src)
	require.NoError(t, err)
	// (2^64-1) + (2^64-1) + 2 == 0 mod 2^64
	assert.Equal(t, []uint64{math.MaxUint64, math.MaxUint64, 2}, shares)
}

func TestSplitRejectsBadCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1} {
		_, err := Split(1, n, &countingSource{next: func() uint64 { return 0 }})
		assert.ErrorIs(t, err, ErrInvalidShareCount)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	t.Parallel()

	shares := []uint64{10, 20, 30}
	assert.True(t, Verify(60, shares))
	shares[1]++
	assert.False(t, Verify(60, shares))
	assert.False(t, Verify(0, nil))
}
