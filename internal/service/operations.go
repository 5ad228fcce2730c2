package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/deck"
	"github.com/lox/pokerdealer/internal/randstream"
	"github.com/lox/pokerdealer/internal/store"
)

// Init records the owner and seeds the draw counter. Once initialized, only
// the current owner may call it again, and doing so only changes the owner.
func (s *Service) Init(ctx context.Context, caller, owner string) (*store.Instance, error) {
	if owner == "" {
		owner = caller
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: no owner given", ErrUnauthorized)
	}

	var inst *store.Instance
	err := s.store.Update(ctx, func(tx store.Tx) error {
		existing, err := tx.Instance()
		switch {
		case err == nil:
			if caller != existing.Owner {
				return ErrUnauthorized
			}
			existing.Owner = owner
			inst = existing
			return tx.PutInstance(existing)
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		e, err := s.handEntropy(ctx)
		if err != nil {
			return err
		}
		counter, err := randstream.InitCounter(e)
		if err != nil {
			return err
		}
		if err := tx.PutCounter(counter); err != nil {
			return err
		}
		inst = &store.Instance{Owner: owner, InitializedAt: s.clock.Now()}
		return tx.PutInstance(inst)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("owner", inst.Owner).Msg("dealer initialized")
	return inst, nil
}

// StartHandRequest deals a new hand at a table, replacing any previous hand.
type StartHandRequest struct {
	TableID uint32        `json:"table_id"`
	HandRef uint32        `json:"hand_ref"`
	Players []dealer.Seat `json:"players"`
	// PrevShowdownPlayers names who showed cards in the hand being replaced.
	PrevShowdownPlayers []uuid.UUID `json:"prev_hand_showdown_players,omitempty"`
}

// StartHandResult carries the start_game payload and, when a previous hand
// was replaced, its last_hand payload.
type StartHandResult struct {
	Response *Response
	LastHand *Response
}

// StartHand deals a hand. Owner only.
func (s *Service) StartHand(ctx context.Context, caller string, req StartHandRequest) (*StartHandResult, error) {
	seats := make([]dealer.Seat, len(req.Players))
	copy(seats, req.Players)
	for i := range seats {
		if seats[i].ID == uuid.Nil {
			seats[i].ID = uuid.New()
		}
	}
	cfg := dealer.HandConfig{
		TableID:    req.TableID,
		HandRef:    req.HandRef,
		Seats:      seats,
		Discipline: s.cfg.Discipline,
		Shuffle:    s.cfg.Shuffle,
	}

	var (
		table    *dealer.Table
		lastHand *dealer.LastHandLog
	)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireOwner(tx, caller); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		counter, err := tx.Counter()
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotInitialized
		}
		if err != nil {
			return err
		}
		e, err := s.handEntropy(ctx)
		if err != nil {
			return err
		}

		prev, err := tx.Table(req.TableID)
		switch {
		case err == nil:
			if lastHand, err = dealer.NewLastHandLog(prev, req.PrevShowdownPlayers); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		cfg.Now = s.clock.Now()
		table, err = dealer.StartHand(e, &counter, cfg)
		if err != nil {
			return err
		}
		if err := tx.PutTable(table); err != nil {
			return err
		}
		return tx.PutCounter(counter)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint32("table_id", table.ID).
		Uint32("hand_ref", table.HandRef).
		Int("players", len(table.Players)).
		Str("discipline", table.Discipline.String()).
		Msg("hand started")

	ids := make([]string, len(table.Players))
	for i, p := range table.Players {
		ids[i] = p.ID.String()
	}
	res := &StartHandResult{Response: &Response{
		Type:      TypeStartGame,
		StartGame: &StartGameResponse{TableID: table.ID, HandRef: table.HandRef, Players: ids},
	}}
	if lastHand != nil {
		res.LastHand = &Response{Type: TypeLastHand, LastHand: lastHand}
		if s.recorder != nil {
			if err := s.recorder.Record(lastHand); err != nil {
				s.logger.Error().Err(err).Uint32("table_id", table.ID).Msg("failed to record previous hand")
			}
		}
	}
	return res, nil
}

// RevealRequest asks for a street on a progressive table.
type RevealRequest struct {
	TableID uint32       `json:"table_id"`
	Street  dealer.Phase `json:"game_state"`
	Key     uint64       `json:"secret_key,string"`
}

// RevealStreet returns a street to anyone holding its secret.
func (s *Service) RevealStreet(ctx context.Context, req RevealRequest) (*Response, error) {
	var res *Response
	err := s.store.Update(ctx, func(tx store.Tx) error {
		table, err := loadTable(tx, req.TableID)
		if err != nil {
			return err
		}
		cards, err := dealer.Reveal(table, req.Street, req.Key, s.clock.Now())
		if err != nil {
			return err
		}
		res = communityCards(table, req.Street, cards)
		return tx.PutTable(table)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Uint32("table_id", req.TableID).Str("street", req.Street.String()).Msg("street revealed")
	return res, nil
}

// Advance moves a monotonic table to its next street and returns the
// street's cards. Owner only.
func (s *Service) Advance(ctx context.Context, caller string, tableID uint32, phase dealer.Phase) (*Response, error) {
	var res *Response
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireOwner(tx, caller); err != nil {
			return err
		}
		table, err := loadTable(tx, tableID)
		if err != nil {
			return err
		}
		cards, err := dealer.Advance(table, phase, s.clock.Now())
		if err != nil {
			return err
		}
		res = communityCards(table, phase, cards)
		return tx.PutTable(table)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint32("table_id", tableID).Str("phase", phase.String()).Msg("phase advanced")
	return res, nil
}

// ShowdownRequest is a key-authorized showdown.
type ShowdownRequest struct {
	TableID uint32
	dealer.ShowdownRequest
}

// Showdown discloses the hands whose secrets are surrendered, plus any
// streets unlocked by key. Anyone holding the secrets may call it; the table
// is never removed by it. The all-in runout is owner only, since it skips the
// street keys, and an all-in showdown ends the hand like OwnerShowdown.
func (s *Service) Showdown(ctx context.Context, caller string, req ShowdownRequest) (*Response, error) {
	var authorize func(store.Tx) error
	if req.AllIn {
		authorize = func(tx store.Tx) error { return requireOwner(tx, caller) }
	}
	return s.showdown(ctx, req.TableID, authorize, func(table *dealer.Table) (*dealer.ShowdownResult, error) {
		return dealer.Showdown(table, req.ShowdownRequest, s.clock.Now())
	})
}

// OwnerShowdown discloses the named players' hands and the all-in runout
// from phase, or from the table's phase when phase is nil. Owner only.
func (s *Service) OwnerShowdown(ctx context.Context, caller string, tableID uint32, players []uuid.UUID, phase *dealer.Phase) (*Response, error) {
	authorize := func(tx store.Tx) error { return requireOwner(tx, caller) }
	return s.showdown(ctx, tableID, authorize, func(table *dealer.Table) (*dealer.ShowdownResult, error) {
		at := table.Phase
		if phase != nil {
			at = *phase
		}
		return dealer.ShowdownByPlayerIDs(table, players, at, s.clock.Now())
	})
}

// showdown runs resolve in one transaction. authorize is nil for keyed
// showdowns; only authorized (owner) showdowns may remove the table.
func (s *Service) showdown(
	ctx context.Context,
	tableID uint32,
	authorize func(store.Tx) error,
	resolve func(*dealer.Table) (*dealer.ShowdownResult, error),
) (*Response, error) {
	var (
		res     *Response
		deleted bool
	)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if authorize != nil {
			if err := authorize(tx); err != nil {
				return err
			}
		}
		table, err := loadTable(tx, tableID)
		if err != nil {
			return err
		}
		result, err := resolve(table)
		if err != nil {
			return err
		}
		res = &Response{Type: TypeShowdown, Showdown: &ShowdownResponse{
			TableID:        table.ID,
			HandRef:        table.HandRef,
			PlayersCards:   result.Hands,
			Board:          result.Board,
			CommunityCards: result.Remaining,
		}}
		if authorize != nil && s.cfg.Retention == DeleteTables {
			deleted = true
			return tx.DeleteTable(tableID)
		}
		return tx.PutTable(table)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Uint32("table_id", tableID).
		Int("hands", len(res.Showdown.PlayersCards)).
		Bool("deleted", deleted).
		Msg("showdown")
	return res, nil
}

// PlayerPrivateData returns the caller's own record at a table. identity is a
// public key already verified by an auth.Validator.
func (s *Service) PlayerPrivateData(ctx context.Context, identity string, tableID uint32) (*PlayerData, error) {
	var data *PlayerData
	err := s.store.View(ctx, func(tx store.Tx) error {
		table, err := loadTable(tx, tableID)
		if err != nil {
			return err
		}
		p, err := table.PlayerByKey(identity)
		if err != nil {
			return err
		}
		data = &PlayerData{TableID: table.ID, HandRef: table.HandRef, Player: *p}
		return nil
	})
	return data, err
}

// EndHand removes a table. Owner only.
func (s *Service) EndHand(ctx context.Context, caller string, tableID uint32) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireOwner(tx, caller); err != nil {
			return err
		}
		if err := tx.DeleteTable(tableID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrTableNotFound, tableID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Uint32("table_id", tableID).Msg("table removed")
	return nil
}

func communityCards(table *dealer.Table, phase dealer.Phase, cards []deck.Card) *Response {
	return &Response{Type: TypeCommunityCards, CommunityCards: &CommunityCardsResponse{
		TableID:        table.ID,
		HandRef:        table.HandRef,
		Phase:          phase,
		CommunityCards: cards,
	}}
}
