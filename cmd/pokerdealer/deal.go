package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/entropy"
	"github.com/lox/pokerdealer/internal/randstream"
)

// DealCmd deals a hand offline. Given the same entropy and counter it always
// produces the same table, so a published hand can be re-derived.
type DealCmd struct {
	Entropy    string   `kong:"help='Hex-encoded entropy (random if omitted)'"`
	Counter    string   `kong:"help='Draw counter as a decimal string (derived from entropy if omitted)'"`
	Players    []string `kong:"arg,optional,help='Player public keys (defaults to two sample players)'"`
	TableID    uint32   `kong:"default='1',help='Table id'"`
	HandRef    uint32   `kong:"default='1',help='Hand reference'"`
	Discipline string   `kong:"default='progressive',enum='progressive,monotonic',help='Disclosure discipline'"`
	Shuffle    string   `kong:"default='seeded',enum='seeded,stream',help='Shuffle mode'"`
	JSON       bool     `kong:"help='Print the table as JSON'"`
}

func (c *DealCmd) Run() error {
	e, err := c.entropy()
	if err != nil {
		return err
	}

	var counter randstream.Counter
	if c.Counter != "" {
		counter, err = randstream.ParseCounter(c.Counter)
	} else {
		counter, err = randstream.InitCounter(e)
	}
	if err != nil {
		return err
	}

	discipline, err := dealer.ParseDiscipline(c.Discipline)
	if err != nil {
		return err
	}
	shuffle, err := dealer.ParseShuffleMode(c.Shuffle)
	if err != nil {
		return err
	}

	keys := c.Players
	if len(keys) == 0 {
		keys = []string{"alice", "bob"}
	}
	seats := make([]dealer.Seat, len(keys))
	for i, k := range keys {
		seats[i] = dealer.Seat{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(k)),
			Username:  k,
			PublicKey: k,
		}
	}

	start := counter
	table, err := dealer.StartHand(e, &counter, dealer.HandConfig{
		TableID:    c.TableID,
		HandRef:    c.HandRef,
		Seats:      seats,
		Discipline: discipline,
		Shuffle:    shuffle,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Entropy     string             `json:"entropy"`
			Counter     randstream.Counter `json:"counter"`
			NextCounter randstream.Counter `json:"next_counter"`
			*dealer.Table
		}{hex.EncodeToString(e), start, counter, table})
	}

	fmt.Println(renderTable(table))
	fmt.Printf("%s %s\n", labelStyle.Render("entropy"), hex.EncodeToString(e))
	fmt.Printf("%s %s -> %s\n", labelStyle.Render("counter"), start, counter)
	return nil
}

func (c *DealCmd) entropy() ([]byte, error) {
	if c.Entropy == "" {
		return entropy.System{}.Entropy(context.Background())
	}
	e, err := hex.DecodeString(c.Entropy)
	if err != nil {
		return nil, fmt.Errorf("invalid entropy: %w", err)
	}
	return e, nil
}
