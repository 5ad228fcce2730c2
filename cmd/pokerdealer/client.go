package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/client"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/server"
	"github.com/lox/pokerdealer/internal/service"
)

// ClientCmd talks to a running dealer over websocket.
type ClientCmd struct {
	Server  string        `kong:"default='http://localhost:8080',env='POKERDEALER_URL',help='Dealer URL'"`
	Token   string        `kong:"env='POKERDEALER_TOKEN',help='Auth token sent before the request'"`
	Timeout time.Duration `kong:"default='10s',help='Request timeout'"`
	Debug   bool          `kong:"help='Enable debug logging'"`

	Init          ClientInitCmd          `cmd:"" help:"Initialize the dealer or transfer ownership"`
	Start         ClientStartCmd         `cmd:"" help:"Deal a new hand at a table"`
	Reveal        ClientRevealCmd        `cmd:"" help:"Reveal a street with its secret"`
	Advance       ClientAdvanceCmd       `cmd:"" help:"Advance a monotonic table"`
	Showdown      ClientShowdownCmd      `cmd:"" help:"Show down with surrendered secrets"`
	OwnerShowdown ClientOwnerShowdownCmd `cmd:"owner-showdown" help:"Show named players' hands"`
	Private       ClientPrivateCmd       `cmd:"" help:"Fetch your own player record"`
	End           ClientEndCmd           `cmd:"" help:"Remove a table"`
}

func (c *ClientCmd) AfterApply(kctx *kong.Context) error {
	kctx.Bind(c)
	return nil
}

// session connects, authenticates when a token is set, and runs fn.
func (c *ClientCmd) session(fn func(ctx context.Context, cl *client.Client) (any, error)) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cl := client.NewClient(c.Server, logger)
	if err := cl.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	if c.Token != "" {
		id, err := cl.Auth(ctx, c.Token)
		if err != nil {
			return err
		}
		logger.Debug("Authenticated", "publicKey", id.PublicKey)
	}

	out, err := fn(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type ClientInitCmd struct {
	Owner string `kong:"help='New owner public key (defaults to the caller)'"`
}

func (c *ClientInitCmd) Run(parent *ClientCmd) error {
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.Init(ctx, c.Owner)
	})
}

type ClientStartCmd struct {
	Table   uint32   `kong:"required,help='Table id'"`
	HandRef uint32   `kong:"help='Hand reference'"`
	Players []string `kong:"arg,help='Players as username=public_key'"`
	Showed  []string `kong:"help='Player ids that showed cards in the previous hand'"`
}

func (c *ClientStartCmd) Run(parent *ClientCmd) error {
	req := service.StartHandRequest{TableID: c.Table, HandRef: c.HandRef}
	for _, p := range c.Players {
		seat, err := parseSeat(p)
		if err != nil {
			return err
		}
		req.Players = append(req.Players, seat)
	}
	ids, err := parseIDs(c.Showed)
	if err != nil {
		return err
	}
	req.PrevShowdownPlayers = ids

	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		start, prev, err := cl.StartHand(ctx, req)
		if err != nil {
			return nil, err
		}
		return struct {
			Response        *service.Response `json:"response"`
			PreviousHandLog *service.Response `json:"previous_hand_log,omitempty"`
		}{start, prev}, nil
	})
}

type ClientRevealCmd struct {
	Table  uint32 `kong:"required,help='Table id'"`
	Street string `kong:"arg,enum='flop,turn,river',help='Street to reveal'"`
	Secret uint64 `kong:"arg,help='Street secret'"`
}

func (c *ClientRevealCmd) Run(parent *ClientCmd) error {
	street, err := dealer.ParsePhase(c.Street)
	if err != nil {
		return err
	}
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.Reveal(ctx, c.Table, street, c.Secret)
	})
}

type ClientAdvanceCmd struct {
	Table uint32 `kong:"required,help='Table id'"`
	Phase string `kong:"arg,enum='flop,turn,river',help='Phase to advance to'"`
}

func (c *ClientAdvanceCmd) Run(parent *ClientCmd) error {
	phase, err := dealer.ParsePhase(c.Phase)
	if err != nil {
		return err
	}
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.Advance(ctx, c.Table, phase)
	})
}

type ClientShowdownCmd struct {
	Table   uint32   `kong:"required,help='Table id'"`
	Flop    *uint64  `kong:"help='Flop secret'"`
	Turn    *uint64  `kong:"help='Turn secret'"`
	River   *uint64  `kong:"help='River secret'"`
	AllIn   bool     `kong:"help='Run out the unreached board without street secrets (owner only)'"`
	Secrets []uint64 `kong:"arg,help='Hand secrets of the players showing'"`
}

func (c *ClientShowdownCmd) Run(parent *ClientCmd) error {
	data := server.ShowdownData{
		TableID:        c.Table,
		FlopSecret:     secretPtr(c.Flop),
		TurnSecret:     secretPtr(c.Turn),
		RiverSecret:    secretPtr(c.River),
		PlayersSecrets: make([]server.Secret, 0, len(c.Secrets)),
		AllIn:          c.AllIn,
	}
	for _, s := range c.Secrets {
		data.PlayersSecrets = append(data.PlayersSecrets, server.Secret(s))
	}
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.Showdown(ctx, data)
	})
}

type ClientOwnerShowdownCmd struct {
	Table   uint32   `kong:"required,help='Table id'"`
	Phase   string   `kong:"required,enum='pre_flop,flop,turn,river',help='Phase the hand ended at'"`
	Players []string `kong:"arg,help='Player ids to show'"`
}

func (c *ClientOwnerShowdownCmd) Run(parent *ClientCmd) error {
	phase, err := dealer.ParsePhase(c.Phase)
	if err != nil {
		return err
	}
	ids, err := parseIDs(c.Players)
	if err != nil {
		return err
	}
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.OwnerShowdown(ctx, c.Table, phase, ids)
	})
}

type ClientPrivateCmd struct {
	Table uint32 `kong:"required,help='Table id'"`
}

func (c *ClientPrivateCmd) Run(parent *ClientCmd) error {
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return cl.PrivateData(ctx, c.Table, "")
	})
}

type ClientEndCmd struct {
	Table uint32 `kong:"required,help='Table id'"`
}

func (c *ClientEndCmd) Run(parent *ClientCmd) error {
	return parent.session(func(ctx context.Context, cl *client.Client) (any, error) {
		return nil, cl.EndHand(ctx, c.Table)
	})
}

func secretPtr(v *uint64) *server.Secret {
	if v == nil {
		return nil
	}
	s := server.Secret(*v)
	return &s
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseSeat reads "username=public_key", or a bare key used as both.
func parseSeat(s string) (dealer.Seat, error) {
	name, key, ok := strings.Cut(s, "=")
	if !ok {
		key = name
	}
	if key == "" {
		return dealer.Seat{}, fmt.Errorf("invalid player %q", s)
	}
	return dealer.Seat{Username: name, PublicKey: key}, nil
}
