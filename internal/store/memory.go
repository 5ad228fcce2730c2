package store

import (
	"context"
	"maps"
	"sync"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/randstream"
)

type snapshot struct {
	Tables   map[uint32]*dealer.Table `json:"tables"`
	Counter  *randstream.Counter      `json:"counter,omitempty"`
	Instance *Instance                `json:"instance,omitempty"`
}

func newSnapshot() *snapshot {
	return &snapshot{Tables: make(map[uint32]*dealer.Table)}
}

// clone copies the containers. Tables are replaced whole, never mutated in
// place, so the pointers can be shared.
func (s *snapshot) clone() *snapshot {
	c := &snapshot{Tables: maps.Clone(s.Tables)}
	if s.Counter != nil {
		v := *s.Counter
		c.Counter = &v
	}
	if s.Instance != nil {
		v := *s.Instance
		c.Instance = &v
	}
	return c
}

// Memory keeps everything in process memory.
type Memory struct {
	mu     sync.RWMutex
	state  *snapshot
	closed bool
	// commit is called with the staged snapshot before it is installed.
	commit func(*snapshot) error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{state: newSnapshot()}
}

func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(&memTx{state: m.state})
}

func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	staged := m.state.clone()
	if err := fn(&memTx{state: staged, writable: true}); err != nil {
		return err
	}
	if m.commit != nil {
		if err := m.commit(staged); err != nil {
			return err
		}
	}
	m.state = staged
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memTx struct {
	state    *snapshot
	writable bool
}

func (tx *memTx) Table(id uint32) (*dealer.Table, error) {
	t, ok := tx.state.Tables[id]
	if !ok {
		return nil, tableNotFound(id)
	}
	return t.Clone(), nil
}

func (tx *memTx) PutTable(t *dealer.Table) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.state.Tables[t.ID] = t.Clone()
	return nil
}

func (tx *memTx) DeleteTable(id uint32) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if _, ok := tx.state.Tables[id]; !ok {
		return tableNotFound(id)
	}
	delete(tx.state.Tables, id)
	return nil
}

func (tx *memTx) Counter() (randstream.Counter, error) {
	if tx.state.Counter == nil {
		return randstream.Counter{}, ErrNotFound
	}
	return *tx.state.Counter, nil
}

func (tx *memTx) PutCounter(c randstream.Counter) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.state.Counter = &c
	return nil
}

func (tx *memTx) Instance() (*Instance, error) {
	if tx.state.Instance == nil {
		return nil, ErrNotFound
	}
	v := *tx.state.Instance
	return &v, nil
}

func (tx *memTx) PutInstance(i *Instance) error {
	if !tx.writable {
		return ErrReadOnly
	}
	v := *i
	tx.state.Instance = &v
	return nil
}
