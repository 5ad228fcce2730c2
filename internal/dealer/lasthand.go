package dealer

import (
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerdealer/internal/deck"
)

// LoggedPlayer is a showdown participant in a LastHandLog.
type LoggedPlayer struct {
	Username string   `json:"username" toml:"username"`
	Hand     []string `json:"hand" toml:"hand"`
}

// LastHandLog summarises a finished hand just before its table is replaced.
type LastHandLog struct {
	TableID         uint32         `json:"table_id" toml:"table_id"`
	HandRef         uint32         `json:"hand_ref" toml:"hand_ref"`
	ShowdownPlayers []LoggedPlayer `json:"showdown_players" toml:"showdown_players"`
	CommunityCards  []string       `json:"community_cards" toml:"community_cards"`
	FlopRevealedAt  *time.Time     `json:"flop_retrieved_at,omitempty" toml:"flop_retrieved_at,omitempty"`
	TurnRevealedAt  *time.Time     `json:"turn_retrieved_at,omitempty" toml:"turn_retrieved_at,omitempty"`
	RiverRevealedAt *time.Time     `json:"river_retrieved_at,omitempty" toml:"river_retrieved_at,omitempty"`
	ShowdownAt      *time.Time     `json:"showdown_retrieved_at,omitempty" toml:"showdown_retrieved_at,omitempty"`
}

// NewLastHandLog builds the log for the hand held in t. Every id must belong
// to a player at the table.
func NewLastHandLog(t *Table, showdownIDs []uuid.UUID) (*LastHandLog, error) {
	log := &LastHandLog{
		TableID:         t.ID,
		HandRef:         t.HandRef,
		ShowdownPlayers: make([]LoggedPlayer, 0, len(showdownIDs)),
		CommunityCards:  deck.Strings(t.Board()),
		FlopRevealedAt:  t.Flop.RevealedAt,
		TurnRevealedAt:  t.Turn.RevealedAt,
		RiverRevealedAt: t.River.RevealedAt,
		ShowdownAt:      t.ShowdownAt,
	}
	for _, id := range showdownIDs {
		p, err := t.PlayerByID(id)
		if err != nil {
			return nil, err
		}
		log.ShowdownPlayers = append(log.ShowdownPlayers, LoggedPlayer{
			Username: p.Username,
			Hand:     deck.Strings(p.Hand[:]),
		})
	}
	return log, nil
}
