package storage

import (
	"sync"

	"github.com/orneryd/replacer/pkg/cache"
)

// CachedEngine keeps recently read sequences in an LRU cache in front of
// another Engine. Callers always receive their own copy of the values.
//
// Writes hold mu across the inner write and the cache update and bump gen.
// A read that missed only fills the cache if no write landed while it was
// reading the inner engine, so a stale read cannot overwrite a newer entry.
type CachedEngine struct {
	Engine
	cache *cache.Cache[*Sequence]

	mu  sync.Mutex
	gen uint64
}

// NewCachedEngine wraps inner with c.
func NewCachedEngine(inner Engine, c *cache.Cache[*Sequence]) *CachedEngine {
	return &CachedEngine{Engine: inner, cache: c}
}

// Cache returns the underlying cache.
func (c *CachedEngine) Cache() *cache.Cache[*Sequence] { return c.cache }

func cloneSequence(seq *Sequence) *Sequence {
	out := *seq
	out.Values = append([]float64(nil), seq.Values...)
	return &out
}

// Put writes through to the inner engine and caches the stored sequence.
func (c *CachedEngine) Put(seq *Sequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err := c.Engine.Put(seq); err != nil {
		c.cache.Remove(nameOf(seq))
		return err
	}
	c.cache.Put(seq.Name, cloneSequence(seq))
	return nil
}

// Get serves from the cache when possible.
func (c *CachedEngine) Get(name string) (*Sequence, error) {
	if seq, ok := c.cache.Get(name); ok {
		return cloneSequence(seq), nil
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	seq, err := c.Engine.Get(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache.Put(name, cloneSequence(seq))
	}
	c.mu.Unlock()
	return seq, nil
}

// Update runs the update on the inner engine and drops the cached entry.
func (c *CachedEngine) Update(name string, fn func(seq *Sequence) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cache.Remove(name)
	err := c.Engine.Update(name, fn)
	c.cache.Remove(name)
	return err
}

// Delete removes name from the inner engine and the cache.
func (c *CachedEngine) Delete(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cache.Remove(name)
	err := c.Engine.Delete(name)
	c.cache.Remove(name)
	return err
}

func nameOf(seq *Sequence) string {
	if seq == nil {
		return ""
	}
	return seq.Name
}

var _ Engine = (*CachedEngine)(nil)
