package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// sequencePrefix namespaces sequence records in the key space.
const sequencePrefix = "seq:"

// BadgerOptions configures a BadgerEngine.
type BadgerOptions struct {
	// DataDir is the database directory. Ignored when InMemory is set.
	DataDir string

	// InMemory keeps all data in RAM.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives badger's own log output. Nil silences it.
	Logger *zap.Logger
}

// BadgerEngine is the persistent Engine backed by BadgerDB.
type BadgerEngine struct {
	db     *badger.DB
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBadgerEngine opens (or creates) a database with the given options.
func NewBadgerEngine(opts BadgerOptions) (*BadgerEngine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bopts := badger.DefaultOptions(opts.DataDir).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(&badgerLogger{s: logger.Named("badger").Sugar()})
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	} else if opts.DataDir == "" {
		return nil, fmt.Errorf("storage: data directory is required")
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	logger.Debug("storage opened",
		zap.String("dir", opts.DataDir),
		zap.Bool("in_memory", opts.InMemory))
	return &BadgerEngine{db: db, logger: logger}, nil
}

// NewBadgerEngineInMemory opens a database that lives only in RAM.
func NewBadgerEngineInMemory() (*BadgerEngine, error) {
	return NewBadgerEngine(BadgerOptions{InMemory: true})
}

func sequenceKey(name string) []byte {
	return []byte(sequencePrefix + name)
}

// view runs fn in a read-only transaction unless the engine is closed.
func (b *BadgerEngine) view(fn func(txn *badger.Txn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStorageClosed
	}
	return b.db.View(fn)
}

// update runs fn in a read-write transaction unless the engine is closed.
func (b *BadgerEngine) update(fn func(txn *badger.Txn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStorageClosed
	}
	return b.db.Update(fn)
}

// Put creates or replaces a sequence.
func (b *BadgerEngine) Put(seq *Sequence) error {
	if seq == nil {
		return fmt.Errorf("%w: nil sequence", ErrInvalidName)
	}
	if err := ValidateName(seq.Name); err != nil {
		return err
	}
	return b.update(func(txn *badger.Txn) error {
		return putSequence(txn, seq)
	})
}

func putSequence(txn *badger.Txn, seq *Sequence) error {
	seq.UpdatedAt = time.Now().UTC()
	data, err := serializeSequence(seq)
	if err != nil {
		return err
	}
	return txn.Set(sequenceKey(seq.Name), data)
}

func getSequence(txn *badger.Txn, name string) (*Sequence, error) {
	item, err := txn.Get(sequenceKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var seq *Sequence
	err = item.Value(func(val []byte) error {
		var derr error
		seq, derr = deserializeSequence(val)
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return seq, nil
}

// Get returns the named sequence.
func (b *BadgerEngine) Get(name string) (*Sequence, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var seq *Sequence
	err := b.view(func(txn *badger.Txn) error {
		var err error
		seq, err = getSequence(txn, name)
		return err
	})
	return seq, err
}

// Update applies fn to the named sequence inside one read-write
// transaction. Concurrent updates to the same name conflict and the
// later commit fails with badger.ErrConflict.
func (b *BadgerEngine) Update(name string, fn func(seq *Sequence) error) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return b.update(func(txn *badger.Txn) error {
		seq, err := getSequence(txn, name)
		if err != nil {
			return err
		}
		if err := fn(seq); err != nil {
			return err
		}
		seq.Name = name
		return putSequence(txn, seq)
	})
}

// Delete removes the named sequence.
func (b *BadgerEngine) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return b.update(func(txn *badger.Txn) error {
		key := sequenceKey(name)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, name)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List returns all sequence names in key order.
func (b *BadgerEngine) List() ([]string, error) {
	var names []string
	err := b.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(sequencePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			names = append(names, string(key[len(sequencePrefix):]))
		}
		return nil
	})
	return names, err
}

// Close closes the database. Further calls return ErrStorageClosed.
func (b *BadgerEngine) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// badgerLogger routes badger's log output into zap. Info is demoted to
// debug since badger reports routine compaction at info.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }
