package deck

import (
	"crypto/sha256"
	"encoding/binary"
)

// Source yields independent 64-bit draws.
type Source interface {
	Next() uint64
}

// Shuffle permutes the deck in place with Fisher-Yates. The index for working
// length L is the first 8 bytes (little-endian) of SHA-256(seed || L) reduced
// mod L+1. The reduction carries a small modulo bias; it is not corrected.
func (d *Deck) Shuffle(seed uint64) {
	d.next = 0
	for l := Size - 1; l > 0; l-- {
		j := hashIndex(seed, l)
		d.cards[l], d.cards[j] = d.cards[j], d.cards[l]
	}
}

// ShuffleStream is the counter-stream variant of Shuffle: one draw per step.
func (d *Deck) ShuffleStream(src Source) {
	d.next = 0
	for l := Size - 1; l > 0; l-- {
		j := int(src.Next() % uint64(l+1))
		d.cards[l], d.cards[j] = d.cards[j], d.cards[l]
	}
}

func hashIndex(seed uint64, l int) int {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(l))
	sum := sha256.Sum256(buf[:])
	return int(binary.LittleEndian.Uint64(sum[:8]) % uint64(l+1))
}
