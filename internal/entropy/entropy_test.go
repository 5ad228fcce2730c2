package entropy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemEntropy(t *testing.T) {
	t.Parallel()

	a, err := System{}.Entropy(context.Background())
	require.NoError(t, err)
	b, err := System{}.Entropy(context.Background())
	require.NoError(t, err)

	assert.Len(t, a, Size)
	assert.NotEqual(t, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = System{}.Entropy(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedReturnsCopy(t *testing.T) {
	t.Parallel()

	f := Fixed{1, 2, 3}
	v, err := f.Entropy(context.Background())
	require.NoError(t, err)
	v[0] = 9
	assert.Equal(t, Fixed{1, 2, 3}, f)
}

func TestSequence(t *testing.T) {
	t.Parallel()

	s := NewSequence([]byte{1}, []byte{2})
	ctx := context.Background()

	v, err := s.Entropy(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, v)
	v, err = s.Entropy(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, v)
	_, err = s.Entropy(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
}
