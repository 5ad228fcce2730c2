package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/deck"
)

// ResponseType tags a Response payload.
type ResponseType string

const (
	TypeStartGame      ResponseType = "start_game"
	TypeCommunityCards ResponseType = "community_cards"
	TypeShowdown       ResponseType = "showdown"
	TypeLastHand       ResponseType = "last_hand"
)

type StartGameResponse struct {
	TableID uint32   `json:"table_id"`
	HandRef uint32   `json:"hand_ref"`
	Players []string `json:"players"`
}

type CommunityCardsResponse struct {
	TableID        uint32       `json:"table_id"`
	HandRef        uint32       `json:"hand_ref"`
	Phase          dealer.Phase `json:"game_state"`
	CommunityCards []deck.Card  `json:"community_cards"`
}

type ShowdownResponse struct {
	TableID      uint32              `json:"table_id"`
	HandRef      uint32              `json:"hand_ref"`
	PlayersCards []dealer.PlayerHand `json:"players_cards"`
	// Board holds streets unlocked by key.
	Board []deck.Card `json:"board,omitempty"`
	// CommunityCards holds the all-in runout.
	CommunityCards []deck.Card `json:"community_cards,omitempty"`
}

// PlayerData is a player's own record, returned to a verified identity.
type PlayerData struct {
	TableID uint32        `json:"table_id"`
	HandRef uint32        `json:"hand_ref"`
	Player  dealer.Player `json:"player"`
}

// Response is a tagged union. On the wire the payload fields sit next to
// "type" in one object.
type Response struct {
	Type           ResponseType
	StartGame      *StartGameResponse
	CommunityCards *CommunityCardsResponse
	Showdown       *ShowdownResponse
	LastHand       *dealer.LastHandLog
}

func (r *Response) payload() (any, error) {
	var p any
	switch r.Type {
	case TypeStartGame:
		p = r.StartGame
	case TypeCommunityCards:
		p = r.CommunityCards
	case TypeShowdown:
		p = r.Showdown
	case TypeLastHand:
		p = r.LastHand
	default:
		return nil, fmt.Errorf("%w: unknown response type %q", ErrSerialization, r.Type)
	}
	return p, nil
}

// TableID returns the table the response is about.
func (r *Response) TableID() uint32 {
	switch r.Type {
	case TypeStartGame:
		return r.StartGame.TableID
	case TypeCommunityCards:
		return r.CommunityCards.TableID
	case TypeShowdown:
		return r.Showdown.TableID
	case TypeLastHand:
		return r.LastHand.TableID
	}
	return 0
}

func (r Response) MarshalJSON() ([]byte, error) {
	p, err := r.payload()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if !bytes.HasPrefix(body, []byte("{")) {
		return nil, fmt.Errorf("%w: %s payload is not an object", ErrSerialization, r.Type)
	}
	out := make([]byte, 0, len(body)+len(r.Type)+12)
	out = append(out, `{"type":`...)
	out = append(out, fmt.Sprintf("%q", r.Type)...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ResponseType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	*r = Response{Type: head.Type}
	switch head.Type {
	case TypeStartGame:
		r.StartGame = new(StartGameResponse)
	case TypeCommunityCards:
		r.CommunityCards = new(CommunityCardsResponse)
	case TypeShowdown:
		r.Showdown = new(ShowdownResponse)
	case TypeLastHand:
		r.LastHand = new(dealer.LastHandLog)
	default:
		return fmt.Errorf("%w: unknown response type %q", ErrSerialization, head.Type)
	}
	p, _ := r.payload()
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}
