// Package storage persists named numeric sequences for replacer.
//
// The storage package defines the Engine interface and provides two
// implementations:
//   - BadgerEngine: persistent disk-based storage
//   - MemoryEngine: BadgerDB's in-memory mode (for testing)
//
// Records are gob-encoded and prefixed with a BLAKE2b-256 checksum, which is
// verified on every read. All engines are safe for concurrent use.
//
// Example Usage:
//
//	engine, err := storage.NewBadgerEngine(storage.BadgerOptions{DataDir: "./data"})
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	err = engine.Put(&storage.Sequence{Name: "scores", Values: []float64{1, 3, 4, 6, 5}})
package storage

import (
	"errors"
	"fmt"
	"time"
	"unicode"
)

// Errors
var (
	ErrNotFound         = errors.New("storage: sequence not found")
	ErrInvalidName      = errors.New("storage: invalid sequence name")
	ErrChecksumMismatch = errors.New("storage: record checksum mismatch")
	ErrStorageClosed    = errors.New("storage: engine closed")
)

// MaxNameLength bounds sequence names.
const MaxNameLength = 255

// Sequence is a named list of values.
type Sequence struct {
	Name      string
	Values    []float64
	UpdatedAt time.Time
}

// Len returns the number of values.
func (s *Sequence) Len() int { return len(s.Values) }

// Engine stores sequences by name.
type Engine interface {
	// Put creates or replaces a sequence. UpdatedAt is set on write.
	Put(seq *Sequence) error

	// Get returns a copy of the named sequence or ErrNotFound.
	Get(name string) (*Sequence, error)

	// Update loads the named sequence, applies fn and writes the result in
	// one transaction. fn's error aborts the update.
	Update(name string, fn func(seq *Sequence) error) error

	// Delete removes a sequence. Deleting a missing name returns ErrNotFound.
	Delete(name string) error

	// List returns all sequence names in ascending order.
	List() ([]string, error)

	Close() error
}

// ValidateName checks that name can be used as a key.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidName, name)
		}
	}
	return nil
}
