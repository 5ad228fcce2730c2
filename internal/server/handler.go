package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/service"
)

// Handler validates requests and dispatches them to the service.
type Handler struct {
	svc       *service.Service
	auth      auth.Validator
	validator *Validator
	clock     quartz.Clock
	logger    zerolog.Logger
}

// NewHandler builds a Handler. clock may be nil for the real clock.
func NewHandler(logger zerolog.Logger, svc *service.Service, validator auth.Validator, clock quartz.Clock) (*Handler, error) {
	schemas, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Handler{
		svc:       svc,
		auth:      validator,
		validator: schemas,
		clock:     clock,
		logger:    logger.With().Str("component", "handler").Logger(),
	}, nil
}

// session holds the identity bound to one connection.
type session struct {
	identity *auth.Identity
}

// Handle processes one raw request and always returns a reply.
func (h *Handler) Handle(ctx context.Context, raw []byte, sess *session) *Reply {
	msg, err := h.validator.Validate(raw)
	if err != nil {
		return h.errorReply("", err)
	}

	reply, err := h.dispatch(ctx, msg, sess)
	if err != nil {
		h.logger.Debug().Err(err).
			Str("type", string(msg.Type)).
			Str("request_id", msg.RequestID).
			Msg("request failed")
		return h.errorReply(msg.RequestID, err)
	}
	reply.Type = TypeResult
	reply.RequestID = msg.RequestID
	reply.Timestamp = h.clock.Now()
	return reply
}

func (h *Handler) errorReply(requestID string, err error) *Reply {
	data := errorData(err)
	if data.Code == CodeInternal {
		h.logger.Error().Err(err).Str("request_id", requestID).Msg("internal error")
	}
	return &Reply{
		Type:      TypeError,
		RequestID: requestID,
		Error:     data,
		Timestamp: h.clock.Now(),
	}
}

// caller resolves the identity for msg. It returns nil without error when the
// request carries no credentials.
func (h *Handler) caller(ctx context.Context, msg *Message, sess *session) (*auth.Identity, error) {
	if msg.Token != "" {
		return h.auth.Validate(ctx, msg.Token)
	}
	return sess.identity, nil
}

func (h *Handler) requireCaller(ctx context.Context, msg *Message, sess *session) (*auth.Identity, error) {
	id, err := h.caller(ctx, msg, sess)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%w: %s needs an authenticated caller", service.ErrUnauthorized, msg.Type)
	}
	return id, nil
}

func decodeData(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errInvalidMessage, msg.Type, err)
	}
	return nil
}

func (h *Handler) dispatch(ctx context.Context, msg *Message, sess *session) (*Reply, error) {
	switch msg.Type {
	case TypeAuth:
		var data AuthData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.auth.Validate(ctx, data.Token)
		if err != nil {
			return nil, err
		}
		sess.identity = id
		return &Reply{Identity: id}, nil

	case TypeInit:
		var data InitData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		inst, err := h.svc.Init(ctx, id.PublicKey, data.Owner)
		if err != nil {
			return nil, err
		}
		return &Reply{Instance: inst}, nil

	case TypeStartHand:
		var data service.StartHandRequest
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		res, err := h.svc.StartHand(ctx, id.PublicKey, data)
		if err != nil {
			return nil, err
		}
		return &Reply{Response: res.Response, PreviousHandLog: res.LastHand}, nil

	case TypeReveal:
		var data RevealData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		res, err := h.svc.RevealStreet(ctx, service.RevealRequest{
			TableID: data.TableID,
			Street:  data.GameState,
			Key:     uint64(data.SecretKey),
		})
		if err != nil {
			return nil, err
		}
		return &Reply{Response: res}, nil

	case TypeAdvance:
		var data AdvanceData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		res, err := h.svc.Advance(ctx, id.PublicKey, data.TableID, data.GameState)
		if err != nil {
			return nil, err
		}
		return &Reply{Response: res}, nil

	case TypeShowdown:
		var data ShowdownData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.caller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		var caller string
		if id != nil {
			caller = id.PublicKey
		}
		res, err := h.svc.Showdown(ctx, caller, data.request())
		if err != nil {
			return nil, err
		}
		return &Reply{Response: res}, nil

	case TypeOwnerShowdown:
		var data OwnerShowdownData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		res, err := h.svc.OwnerShowdown(ctx, id.PublicKey, data.TableID, data.ShowCards, data.GameState)
		if err != nil {
			return nil, err
		}
		return &Reply{Response: res}, nil

	case TypePrivateData:
		var data TableData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		player, err := h.svc.PlayerPrivateData(ctx, id.PublicKey, data.TableID)
		if err != nil {
			return nil, err
		}
		return &Reply{Player: player}, nil

	case TypeEndHand:
		var data TableData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		id, err := h.requireCaller(ctx, msg, sess)
		if err != nil {
			return nil, err
		}
		if err := h.svc.EndHand(ctx, id.PublicKey, data.TableID); err != nil {
			return nil, err
		}
		return &Reply{}, nil
	}

	return nil, fmt.Errorf("%w: unknown message type %q", errInvalidMessage, msg.Type)
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
