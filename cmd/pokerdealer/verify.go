package main

import (
	"fmt"
	"strconv"

	"github.com/lox/pokerdealer/internal/sharing"
)

// VerifyCmd checks a secret against its shares.
type VerifyCmd struct {
	Secret string   `kong:"arg,help='Street secret (decimal)'"`
	Shares []string `kong:"arg,help='Player shares (decimal)'"`
}

func (c *VerifyCmd) Run() error {
	secret, err := strconv.ParseUint(c.Secret, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid secret: %w", err)
	}
	shares := make([]uint64, len(c.Shares))
	for i, s := range c.Shares {
		if shares[i], err = strconv.ParseUint(s, 10, 64); err != nil {
			return fmt.Errorf("invalid share %q: %w", s, err)
		}
	}

	if !sharing.Verify(secret, shares) {
		return fmt.Errorf("shares combine to %d, not %d", sharing.Combine(shares), secret)
	}
	fmt.Println("ok")
	return nil
}
