package server

import (
	"errors"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/randstream"
	"github.com/lox/pokerdealer/internal/service"
	"github.com/lox/pokerdealer/internal/store"
)

// Error codes sent in ErrorData.Code.
const (
	CodeEntropyUnavailable     = "entropy_unavailable"
	CodeInvalidPlayerCount     = "invalid_player_count"
	CodeDuplicateIdentifiers   = "duplicate_identifiers"
	CodeTableNotFound          = "table_not_found"
	CodePlayerNotFound         = "player_not_found"
	CodeSecretNotFound         = "secret_not_found"
	CodeInvalidViewingKey      = "invalid_viewing_key"
	CodeIllegalPhaseTransition = "illegal_phase_transition"
	CodeInvalidGameState       = "invalid_game_state"
	CodeUnauthorized           = "unauthorized"
	CodeSerializationFailure   = "serialization_failure"
	CodeNotInitialized         = "not_initialized"
	CodeInvalidPermit          = "invalid_permit"
	CodeInvalidMessage         = "invalid_message"
	CodeAuthUnavailable        = "auth_unavailable"
	CodeInternal               = "internal_error"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{randstream.ErrEntropyUnavailable, CodeEntropyUnavailable},
	{dealer.ErrInvalidPlayerCount, CodeInvalidPlayerCount},
	{dealer.ErrDuplicateIdentifiers, CodeDuplicateIdentifiers},
	{service.ErrTableNotFound, CodeTableNotFound},
	{store.ErrNotFound, CodeTableNotFound},
	{dealer.ErrPlayerNotFound, CodePlayerNotFound},
	{dealer.ErrSecretNotFound, CodeSecretNotFound},
	{dealer.ErrInvalidViewingKey, CodeInvalidViewingKey},
	{dealer.ErrIllegalPhaseTransition, CodeIllegalPhaseTransition},
	{dealer.ErrInvalidGameState, CodeInvalidGameState},
	{service.ErrUnauthorized, CodeUnauthorized},
	{store.ErrSerialization, CodeSerializationFailure},
	{service.ErrNotInitialized, CodeNotInitialized},
	{auth.ErrInvalidPermit, CodeInvalidPermit},
	{auth.ErrInvalidToken, CodeUnauthorized},
	{auth.ErrUnavailable, CodeAuthUnavailable},
	{errInvalidMessage, CodeInvalidMessage},
}

var errInvalidMessage = errors.New("invalid message")

// errorCode maps an operation error to its wire code.
func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

func errorData(err error) *ErrorData {
	code := errorCode(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	return &ErrorData{Code: code, Message: msg}
}
