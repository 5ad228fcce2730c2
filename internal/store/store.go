// Package store persists tables, the draw counter and instance settings.
//
// Every operation runs inside View or Update. An Update commits only when its
// function returns nil, so a failed operation leaves no partial write. Writers
// are serialized, which is what keeps two hands from drawing the same counter
// value.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/randstream"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrReadOnly      = errors.New("read-only transaction")
	ErrSerialization = errors.New("serialization failure")
	ErrClosed        = errors.New("store closed")
)

// Instance is the one-time setup of a dealer deployment.
type Instance struct {
	Owner         string    `json:"owner"`
	InitializedAt time.Time `json:"initialized_at"`
}

// Tx is a view of the store inside one transaction. Tables are returned as
// copies; changes are only kept by PutTable.
type Tx interface {
	Table(id uint32) (*dealer.Table, error)
	PutTable(t *dealer.Table) error
	DeleteTable(id uint32) error
	Counter() (randstream.Counter, error)
	PutCounter(c randstream.Counter) error
	Instance() (*Instance, error)
	PutInstance(i *Instance) error
}

// Store runs transactions.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
)

// Open returns the named backend. path is ignored for memory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		f, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendBolt:
		b, err := OpenBolt(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("store: unknown backend %q", backend)
}

func tableNotFound(id uint32) error {
	return fmt.Errorf("table %d: %w", id, ErrNotFound)
}
