// Package sharing splits a 64-bit secret into additive shares that sum,
// mod 2^64, back to the secret.
package sharing

import (
	"errors"
	"fmt"
)

// ErrInvalidShareCount is returned when fewer than one share is requested.
var ErrInvalidShareCount = errors.New("invalid share count")

// Source yields the random share values.
type Source interface {
	Next() uint64
}

// Split draws n-1 shares from src and sets the last share so the wrapping sum
// of all shares equals secret. With n == 1 the only share is the secret and
// nothing is drawn.
func Split(secret uint64, n int, src Source) ([]uint64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShareCount, n)
	}
	shares := make([]uint64, n)
	var sum uint64
	for i := 0; i < n-1; i++ {
		shares[i] = src.Next()
		sum += shares[i]
	}
	shares[n-1] = secret - sum
	return shares, nil
}

// Combine returns the wrapping sum of shares.
func Combine(shares []uint64) uint64 {
	var sum uint64
	for _, s := range shares {
		sum += s
	}
	return sum
}

// Verify reports whether shares reconstruct secret.
func Verify(secret uint64, shares []uint64) bool {
	return len(shares) > 0 && Combine(shares) == secret
}
