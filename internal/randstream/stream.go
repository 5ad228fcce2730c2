// Package randstream expands one hand's entropy and a persisted 128-bit
// counter into a sequence of 64-bit draws.
//
// Each draw is HKDF-SHA512(salt=64 zero bytes, ikm=entropy, info=counter_le),
// truncated to the first 8 bytes. The counter is advanced once per draw and is
// never reused, which is the only non-repetition guarantee of the stream.
package randstream

import (
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinEntropy is the shortest entropy value accepted for a hand.
	MinEntropy = 16
	saltSize   = 64
	okmSize    = 64
	// counterModulus reduces the initial counter at instantiation.
	counterModulus = 1000
)

// ErrEntropyUnavailable is returned when a stream is built without usable
// entropy.
var ErrEntropyUnavailable = errors.New("entropy unavailable")

var zeroSalt [saltSize]byte

// Stream draws values for one hand. It advances the caller's counter in place,
// so the caller persists the counter after the hand is dealt.
type Stream struct {
	entropy []byte
	counter *Counter
}

// New builds a stream over entropy. The counter is shared with the caller.
func New(entropy []byte, counter *Counter) (*Stream, error) {
	if len(entropy) < MinEntropy {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrEntropyUnavailable, len(entropy), MinEntropy)
	}
	if counter == nil {
		return nil, errors.New("randstream: nil counter")
	}
	buf := make([]byte, len(entropy))
	copy(buf, entropy)
	return &Stream{entropy: buf, counter: counter}, nil
}

// Next returns the draw for the current counter value and increments it.
func (s *Stream) Next() uint64 {
	v := Derive(s.entropy, *s.counter)
	s.counter.Inc()
	return v
}

// Counter returns the counter value the next draw will use.
func (s *Stream) Counter() Counter {
	return *s.counter
}

// Derive computes the draw for a fixed (entropy, counter) pair without
// touching any state. Audits use it to recompute a recorded hand.
func Derive(entropy []byte, c Counter) uint64 {
	info := c.Bytes()
	r := hkdf.New(sha512.New, entropy, zeroSalt[:], info[:])
	var okm [okmSize]byte
	if _, err := io.ReadFull(r, okm[:]); err != nil {
		// 64 bytes is far below the HKDF-SHA512 output limit.
		panic(fmt.Sprintf("randstream: hkdf read: %v", err))
	}
	return binary.LittleEndian.Uint64(okm[:8])
}

// InitCounter seeds the process-wide counter from instantiation entropy: the
// first 16 bytes as a little-endian 128-bit value, reduced mod 1000.
func InitCounter(entropy []byte) (Counter, error) {
	if len(entropy) < MinEntropy {
		return Counter{}, fmt.Errorf("%w: got %d bytes, need %d", ErrEntropyUnavailable, len(entropy), MinEntropy)
	}
	lo := binary.LittleEndian.Uint64(entropy[:8])
	hi := binary.LittleEndian.Uint64(entropy[8:16])
	return CounterFrom(bits.Rem64(hi, lo, counterModulus)), nil
}
