package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/service"
	"github.com/lox/pokerdealer/internal/store"
)

// MessageType names a request or reply on the wire.
type MessageType string

const (
	TypeAuth          MessageType = "auth"
	TypeInit          MessageType = "init"
	TypeStartHand     MessageType = "start_hand"
	TypeReveal        MessageType = "reveal"
	TypeAdvance       MessageType = "advance"
	TypeShowdown      MessageType = "showdown"
	TypeOwnerShowdown MessageType = "owner_showdown"
	TypePrivateData   MessageType = "private_data"
	TypeEndHand       MessageType = "end_hand"

	TypeResult MessageType = "result"
	TypeError  MessageType = "error"
)

// Message is a request from a client. Token, when set, authenticates this
// message alone; otherwise the identity bound by an earlier auth message on
// the same connection is used.
type Message struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Token     string          `json:"token,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
}

// NewMessage creates a request with the given payload.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	msg := &Message{Type: msgType, Timestamp: time.Now()}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", msgType, err)
	}
	msg.Data = raw
	return msg, nil
}

// Reply answers a Message. Exactly one of the payload fields is set for a
// result; Error is set for an error.
type Reply struct {
	Type            MessageType         `json:"type"`
	RequestID       string              `json:"requestId,omitempty"`
	Response        *service.Response   `json:"response,omitempty"`
	PreviousHandLog *service.Response   `json:"previous_hand_log,omitempty"`
	Player          *service.PlayerData `json:"player,omitempty"`
	Instance        *store.Instance     `json:"instance,omitempty"`
	Identity        *auth.Identity      `json:"identity,omitempty"`
	Error           *ErrorData          `json:"data,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Secret is a uint64 key carried as a decimal string so that clients which
// parse numbers as doubles keep every bit.
type Secret uint64

func (s Secret) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(s), 10), nil
}

func (s *Secret) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid secret %q: %w", text, err)
	}
	*s = Secret(v)
	return nil
}

func (s *Secret) ptr() *uint64 {
	if s == nil {
		return nil
	}
	v := uint64(*s)
	return &v
}

type AuthData struct {
	Token string `json:"token"`
}

type InitData struct {
	// Owner defaults to the caller.
	Owner string `json:"owner,omitempty"`
}

type RevealData struct {
	TableID   uint32       `json:"table_id"`
	GameState dealer.Phase `json:"game_state"`
	SecretKey Secret       `json:"secret_key"`
}

type AdvanceData struct {
	TableID   uint32       `json:"table_id"`
	GameState dealer.Phase `json:"game_state"`
}

// ShowdownData surrenders hand secrets and any street keys. AllIn is only
// honored for the owner and runs out the board from the table's phase.
type ShowdownData struct {
	TableID        uint32   `json:"table_id"`
	FlopSecret     *Secret  `json:"flop_secret,omitempty"`
	TurnSecret     *Secret  `json:"turn_secret,omitempty"`
	RiverSecret    *Secret  `json:"river_secret,omitempty"`
	PlayersSecrets []Secret `json:"players_secrets"`
	AllIn          bool     `json:"all_in,omitempty"`
}

func (d ShowdownData) request() service.ShowdownRequest {
	keys := make([]uint64, len(d.PlayersSecrets))
	for i, s := range d.PlayersSecrets {
		keys[i] = uint64(s)
	}
	return service.ShowdownRequest{
		TableID: d.TableID,
		ShowdownRequest: dealer.ShowdownRequest{
			FlopKey:    d.FlopSecret.ptr(),
			TurnKey:    d.TurnSecret.ptr(),
			RiverKey:   d.RiverSecret.ptr(),
			PlayerKeys: keys,
			AllIn:      d.AllIn,
		},
	}
}

// OwnerShowdownData names the players to disclose. GameState defaults to the
// table's phase.
type OwnerShowdownData struct {
	TableID   uint32        `json:"table_id"`
	GameState *dealer.Phase `json:"game_state,omitempty"`
	ShowCards []uuid.UUID   `json:"show_cards"`
}

// TableData addresses a table; used by private_data and end_hand.
type TableData struct {
	TableID uint32 `json:"table_id"`
}
