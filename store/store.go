// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/katalvlaran/ptens/ptensors"
	"github.com/katalvlaran/ptens/session"
)

const prefix = "pack1/"

// Store is a named collection of packs. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, args ...any)   { b.l.Error(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Warningf(f string, args ...any) { b.l.Warn(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Infof(f string, args ...any)    { b.l.Info(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.l.Debug(fmt.Sprintf(f, args...)) }

// Open opens (creating if needed) the store in directory path.
func Open(path string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	var bo badger.Options
	if o.inMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if path == "" {
			return nil, storeErrorf("Open", ErrNoPath)
		}
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, storeErrorf("Open", err)
		}
		bo = badger.DefaultOptions(path)
	}
	bo = bo.WithSyncWrites(o.syncWrites).WithNumVersionsToKeep(1)
	if o.logger != nil {
		bo = bo.WithLogger(badgerLogger{o.logger})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, storeErrorf("Open", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an empty in-memory store.
func OpenInMemory(opts ...Option) (*Store, error) {
	return Open("", append(opts, WithInMemory(), WithSyncWrites(false))...)
}

func key(name string) ([]byte, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%q: %w", name, ErrBadName)
	}
	return []byte(prefix + name), nil
}

// Put stores p under name, replacing any previous pack.
func (s *Store) Put(ctx context.Context, name string, p *ptensors.Pack1) error {
	if err := ctx.Err(); err != nil {
		return storeErrorf("Put", err)
	}
	k, err := key(name)
	if err != nil {
		return storeErrorf("Put", err)
	}
	if p == nil {
		return storeErrorf("Put", ptensors.ErrNilPack)
	}
	v, err := p.MarshalBinary()
	if err != nil {
		return storeErrorf("Put", err)
	}
	if err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, v)
	}); err != nil {
		return storeErrorf("Put", err)
	}

	return nil
}

// Get loads the pack stored under name into session sess.
func (s *Store) Get(ctx context.Context, sess *session.Session, name string) (*ptensors.Pack1, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErrorf("Get", err)
	}
	k, err := key(name)
	if err != nil {
		return nil, storeErrorf("Get", err)
	}
	var v []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storeErrorf("Get", fmt.Errorf("%q: %w", name, ErrNotFound))
	}
	if err != nil {
		return nil, storeErrorf("Get", err)
	}
	p, err := ptensors.UnmarshalPack1(sess, v)
	if err != nil {
		return nil, storeErrorf("Get", err)
	}

	return p, nil
}

// Delete removes the pack stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return storeErrorf("Delete", err)
	}
	k, err := key(name)
	if err != nil {
		return storeErrorf("Delete", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return storeErrorf("Delete", fmt.Errorf("%q: %w", name, ErrNotFound))
	}
	if err != nil {
		return storeErrorf("Delete", err)
	}

	return nil
}

// List returns the stored names in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErrorf("List", err)
	}
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	if err != nil {
		return nil, storeErrorf("List", err)
	}

	return names, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storeErrorf("Close", err)
	}
	return nil
}
