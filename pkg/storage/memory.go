package storage

import (
	"fmt"
)

// MemoryEngine is a thread-safe in-memory sequence store.
// It wraps BadgerDB's in-memory mode for testing purposes.
//
// Implementation Note:
//
//	MemoryEngine is a thin wrapper around BadgerEngine with InMemory=true.
//	This ensures tests use the exact same code path as production.
type MemoryEngine struct {
	*BadgerEngine
}

// NewMemoryEngine creates a new in-memory storage engine.
//
// Example:
//
//	engine := storage.NewMemoryEngine()
//	defer engine.Close()
func NewMemoryEngine() *MemoryEngine {
	engine, err := NewBadgerEngineInMemory()
	if err != nil {
		// In testing context, panic is acceptable for setup failures
		panic(fmt.Sprintf("failed to create in-memory BadgerEngine: %v", err))
	}
	return &MemoryEngine{BadgerEngine: engine}
}

// Open returns the engine described by opts: a MemoryEngine when InMemory
// is set, otherwise a persistent BadgerEngine.
func Open(opts BadgerOptions) (Engine, error) {
	engine, err := NewBadgerEngine(opts)
	if err != nil {
		return nil, err
	}
	if opts.InMemory {
		return &MemoryEngine{BadgerEngine: engine}, nil
	}
	return engine, nil
}

var (
	_ Engine = (*BadgerEngine)(nil)
	_ Engine = (*MemoryEngine)(nil)
)
