package randstream

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntropy = bytes.Repeat([]byte{0xa5}, 32)

func TestNewRejectsShortEntropy(t *testing.T) {
	t.Parallel()

	var c Counter
	for _, e := range [][]byte{nil, {}, make([]byte, MinEntropy-1)} {
		_, err := New(e, &c)
		assert.ErrorIs(t, err, ErrEntropyUnavailable)
	}
	assert.Equal(t, Counter{}, c, "failed construction must not draw")

	_, err := New(make([]byte, MinEntropy), &c)
	assert.NoError(t, err)
}

func TestNextIsDeterministic(t *testing.T) {
	t.Parallel()

	c1 := CounterFrom(41)
	c2 := CounterFrom(41)
	s1, err := New(testEntropy, &c1)
	require.NoError(t, err)
	s2, err := New(testEntropy, &c2)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		assert.Equal(t, s1.Next(), s2.Next(), "draw %d", i)
	}
	assert.Equal(t, CounterFrom(57), c1)
	assert.Equal(t, c1, c2)
}

func TestNextMatchesDerive(t *testing.T) {
	t.Parallel()

	c := CounterFrom(7)
	s, err := New(testEntropy, &c)
	require.NoError(t, err)

	assert.Equal(t, Derive(testEntropy, CounterFrom(7)), s.Next())
	assert.Equal(t, Derive(testEntropy, CounterFrom(8)), s.Next())
	assert.Equal(t, CounterFrom(9), s.Counter())
}

func TestDrawsDifferAcrossCountersAndEntropy(t *testing.T) {
	t.Parallel()

	seen := make(map[uint64]bool)
	c := Counter{}
	s, err := New(testEntropy, &c)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		v := s.Next()
		assert.False(t, seen[v], "repeated draw at counter %d", i)
		seen[v] = true
	}

	other := bytes.Repeat([]byte{0x5a}, 32)
	assert.NotEqual(t, Derive(testEntropy, Counter{}), Derive(other, Counter{}))
}

func TestStreamCopiesEntropy(t *testing.T) {
	t.Parallel()

	e := bytes.Clone(testEntropy)
	c := Counter{}
	s, err := New(e, &c)
	require.NoError(t, err)
	e[0] ^= 0xff
	assert.Equal(t, Derive(testEntropy, Counter{}), s.Next())
}

func TestCounterIncCarries(t *testing.T) {
	t.Parallel()

	c := Counter{Lo: math.MaxUint64}
	c.Inc()
	assert.Equal(t, Counter{Lo: 0, Hi: 1}, c)

	c = Counter{Lo: math.MaxUint64, Hi: math.MaxUint64}
	c.Inc()
	assert.Equal(t, Counter{}, c)
}

func TestCounterBytesLittleEndian(t *testing.T) {
	t.Parallel()

	b := Counter{Lo: 0x0102, Hi: 0x03}.Bytes()
	assert.Equal(t, [16]byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0x03}, b)
}

func TestCounterJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		counter Counter
		want    string
	}{
		{Counter{}, `"0"`},
		{CounterFrom(999), `"999"`},
		{Counter{Hi: 1}, `"18446744073709551616"`},
		{Counter{Lo: math.MaxUint64, Hi: math.MaxUint64}, `"340282366920938463463374607431768211455"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			data, err := json.Marshal(tt.counter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var got Counter
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.counter, got)
		})
	}

	var c Counter
	assert.Error(t, json.Unmarshal([]byte(`12`), &c))
	assert.Error(t, json.Unmarshal([]byte(`"-1"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`"340282366920938463463374607431768211456"`), &c))
}

func TestCounterLess(t *testing.T) {
	t.Parallel()

	assert.True(t, CounterFrom(1).Less(CounterFrom(2)))
	assert.True(t, Counter{Lo: math.MaxUint64}.Less(Counter{Hi: 1}))
	assert.False(t, Counter{Hi: 1}.Less(Counter{Lo: math.MaxUint64}))
}

func TestInitCounter(t *testing.T) {
	t.Parallel()

	_, err := InitCounter(make([]byte, 8))
	assert.ErrorIs(t, err, ErrEntropyUnavailable)

	e := make([]byte, 16)
	e[0] = 0xe9 // 1001
	e[1] = 0x03
	c, err := InitCounter(e)
	require.NoError(t, err)
	assert.Equal(t, CounterFrom(1), c)

	// 2^64 mod 1000 = 616
	e = make([]byte, 16)
	e[8] = 1
	c, err = InitCounter(e)
	require.NoError(t, err)
	assert.Equal(t, CounterFrom(616), c)

	c, err = InitCounter(bytes.Repeat([]byte{0xff}, 32))
	require.NoError(t, err)
	assert.True(t, c.Less(CounterFrom(1000)))
}
