package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/randstream"
)

var (
	tablesBucket = []byte("tables")
	metaBucket   = []byte("meta")
	counterKey   = []byte("counter")
	instanceKey  = []byte("instance")
)

// Bolt stores records as JSON in a bbolt file. bbolt allows one writer at a
// time, which serializes counter use across hands.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("store: bolt backend needs a path")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{tablesBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *Bolt) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func tableKey(id uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], id)
	return k[:]
}

func (t *boltTx) get(bucket, key []byte, v any) error {
	data := t.tx.Bucket(bucket).Get(key)
	if data == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s/%s: %v", ErrSerialization, bucket, key, err)
	}
	return nil
}

func (t *boltTx) put(bucket, key []byte, v any) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerialization, bucket, err)
	}
	return t.tx.Bucket(bucket).Put(key, data)
}

func (t *boltTx) Table(id uint32) (*dealer.Table, error) {
	var table dealer.Table
	if err := t.get(tablesBucket, tableKey(id), &table); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, tableNotFound(id)
		}
		return nil, err
	}
	return &table, nil
}

func (t *boltTx) PutTable(table *dealer.Table) error {
	return t.put(tablesBucket, tableKey(table.ID), table)
}

func (t *boltTx) DeleteTable(id uint32) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	bucket := t.tx.Bucket(tablesBucket)
	key := tableKey(id)
	if bucket.Get(key) == nil {
		return tableNotFound(id)
	}
	return bucket.Delete(key)
}

func (t *boltTx) Counter() (randstream.Counter, error) {
	var c randstream.Counter
	err := t.get(metaBucket, counterKey, &c)
	return c, err
}

func (t *boltTx) PutCounter(c randstream.Counter) error {
	return t.put(metaBucket, counterKey, c)
}

func (t *boltTx) Instance() (*Instance, error) {
	var i Instance
	if err := t.get(metaBucket, instanceKey, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (t *boltTx) PutInstance(i *Instance) error {
	return t.put(metaBucket, instanceKey, i)
}
