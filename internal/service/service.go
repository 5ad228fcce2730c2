// Package service runs dealer operations against the store.
//
// Each operation is one store transaction: the counter, the instance record
// and the touched table are read and written together, so an operation either
// commits completely or leaves nothing behind.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/entropy"
	"github.com/lox/pokerdealer/internal/randstream"
	"github.com/lox/pokerdealer/internal/store"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTableNotFound  = errors.New("table not found")
	ErrNotInitialized = errors.New("dealer not initialized")
	ErrSerialization  = store.ErrSerialization
)

// Retention decides what happens to a table after a showdown.
type Retention uint8

const (
	RetainTables Retention = iota
	DeleteTables
)

// ParseRetention accepts "retain" or "delete".
func ParseRetention(s string) (Retention, error) {
	switch s {
	case "retain", "":
		return RetainTables, nil
	case "delete":
		return DeleteTables, nil
	}
	return 0, fmt.Errorf("unknown showdown retention %q", s)
}

// Config holds dealer behaviour chosen at deployment.
type Config struct {
	Discipline dealer.Discipline
	Shuffle    dealer.ShuffleMode
	Retention  Retention
}

// HandRecorder receives the log of each replaced hand.
type HandRecorder interface {
	Record(entry *dealer.LastHandLog) error
}

// Service is the dealer's application layer.
type Service struct {
	cfg      Config
	store    store.Store
	entropy  entropy.Source
	clock    quartz.Clock
	logger   zerolog.Logger
	recorder HandRecorder
}

// New builds a Service. clock may be nil for the real clock.
func New(logger zerolog.Logger, st store.Store, src entropy.Source, clock quartz.Clock, cfg Config) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{
		cfg:     cfg,
		store:   st,
		entropy: src,
		clock:   clock,
		logger:  logger.With().Str("component", "service").Logger(),
	}
}

// SetRecorder installs a recorder for replaced hands.
func (s *Service) SetRecorder(r HandRecorder) {
	s.recorder = r
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) handEntropy(ctx context.Context) ([]byte, error) {
	e, err := s.entropy.Entropy(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", randstream.ErrEntropyUnavailable, err)
	}
	return e, nil
}

func requireOwner(tx store.Tx, caller string) error {
	inst, err := tx.Instance()
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotInitialized
	}
	if err != nil {
		return err
	}
	if caller == "" || caller != inst.Owner {
		return ErrUnauthorized
	}
	return nil
}

func loadTable(tx store.Tx, id uint32) (*dealer.Table, error) {
	t, err := tx.Table(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrTableNotFound, id)
	}
	return t, err
}
