package randstream

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
)

// Counter is an unsigned 128-bit draw counter.
type Counter struct {
	Lo uint64
	Hi uint64
}

// CounterFrom returns a counter holding v.
func CounterFrom(v uint64) Counter {
	return Counter{Lo: v}
}

// Inc adds one, wrapping at 2^128.
func (c *Counter) Inc() {
	var carry uint64
	c.Lo, carry = bits.Add64(c.Lo, 1, 0)
	c.Hi, _ = bits.Add64(c.Hi, 0, carry)
}

// Bytes returns the little-endian encoding used as HKDF info.
func (c Counter) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], c.Lo)
	binary.LittleEndian.PutUint64(b[8:], c.Hi)
	return b
}

// Less reports whether c < other.
func (c Counter) Less(other Counter) bool {
	if c.Hi != other.Hi {
		return c.Hi < other.Hi
	}
	return c.Lo < other.Lo
}

func (c Counter) big() *big.Int {
	v := new(big.Int).SetUint64(c.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(c.Lo))
}

// String returns the decimal value.
func (c Counter) String() string {
	if c.Hi == 0 {
		return strconv.FormatUint(c.Lo, 10)
	}
	return c.big().String()
}

// ParseCounter parses a decimal string.
func ParseCounter(s string) (Counter, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return Counter{}, fmt.Errorf("randstream: invalid counter %q", s)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return Counter{Lo: lo.Uint64(), Hi: hi.Uint64()}, nil
}

// MarshalJSON encodes the counter as a decimal string so it survives JSON
// number precision limits.
func (c Counter) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, c.String()), nil
}

// UnmarshalJSON decodes a decimal string.
func (c *Counter) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("randstream: counter must be a string: %w", err)
	}
	v, err := ParseCounter(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
