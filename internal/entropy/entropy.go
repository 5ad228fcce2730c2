// Package entropy supplies the per-hand random input to the dealer.
package entropy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
)

// Size is the number of bytes System returns per hand.
const Size = 32

// ErrExhausted is returned by a Sequence with no values left.
var ErrExhausted = errors.New("entropy: sequence exhausted")

// Source returns fresh entropy for one hand.
type Source interface {
	Entropy(ctx context.Context) ([]byte, error)
}

// System reads from the operating system CSPRNG.
type System struct{}

func (System) Entropy(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("entropy: read system random: %w", err)
	}
	return buf, nil
}

// Fixed always returns the same bytes. It is used to replay a recorded hand.
type Fixed []byte

func (f Fixed) Entropy(context.Context) ([]byte, error) {
	return append([]byte(nil), f...), nil
}

// Sequence returns its values in order, one per call.
type Sequence struct {
	mu     sync.Mutex
	values [][]byte
}

// NewSequence returns a Sequence over values.
func NewSequence(values ...[]byte) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Entropy(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return nil, ErrExhausted
	}
	v := s.values[0]
	s.values = s.values[1:]
	return append([]byte(nil), v...), nil
}
