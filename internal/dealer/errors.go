package dealer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlayerCount     = errors.New("invalid player count")
	ErrDuplicateIdentifiers   = errors.New("duplicate player identifiers")
	ErrPlayerNotFound         = errors.New("player not found")
	ErrSecretNotFound         = errors.New("secret not found")
	ErrInvalidViewingKey      = errors.New("invalid viewing key")
	ErrIllegalPhaseTransition = errors.New("illegal phase transition")
	ErrInvalidGameState       = errors.New("invalid game state")
)

// PhaseError describes a rejected Advance. Required is only meaningful when
// Final is false.
type PhaseError struct {
	TableID   uint32
	Current   Phase
	Requested Phase
	Required  Phase
	Final     bool
}

func (e *PhaseError) Error() string {
	if e.Final {
		return fmt.Sprintf("table %d: %s: %s -> %s, hand is already at %s",
			e.TableID, ErrIllegalPhaseTransition, e.Current, e.Requested, e.Current)
	}
	return fmt.Sprintf("table %d: %s: %s -> %s, required %s",
		e.TableID, ErrIllegalPhaseTransition, e.Current, e.Requested, e.Required)
}

func (e *PhaseError) Unwrap() error {
	return ErrIllegalPhaseTransition
}
