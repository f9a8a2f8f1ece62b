package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/replacer/pkg/cache"
)

func TestCachedEngine(t *testing.T) {
	inner := newTestEngine(t)
	engine := NewCachedEngine(inner, cache.New[*Sequence](8, 0))

	require.NoError(t, engine.Put(&Sequence{Name: "a", Values: []float64{1, 2, 3}}))

	got, err := engine.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got.Values)
	assert.Equal(t, uint64(1), engine.Cache().Stats().Hits)

	t.Run("callers get copies", func(t *testing.T) {
		got.Values[0] = 100
		again, err := engine.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 1.0, again.Values[0])
	})

	t.Run("update invalidates", func(t *testing.T) {
		require.NoError(t, engine.Update("a", func(seq *Sequence) error {
			seq.Values[1] = 20
			return nil
		}))
		got, err := engine.Get("a")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 20, 3}, got.Values)
	})

	t.Run("miss fills the cache", func(t *testing.T) {
		require.NoError(t, inner.Put(&Sequence{Name: "b", Values: []float64{5}}))
		misses := engine.Cache().Stats().Misses
		_, err := engine.Get("b")
		require.NoError(t, err)
		assert.Equal(t, misses+1, engine.Cache().Stats().Misses)
		_, err = engine.Get("b")
		require.NoError(t, err)
		assert.Equal(t, misses+1, engine.Cache().Stats().Misses)
	})

	t.Run("delete invalidates", func(t *testing.T) {
		require.NoError(t, engine.Delete("a"))
		_, err := engine.Get("a")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failed put is not cached", func(t *testing.T) {
		assert.ErrorIs(t, engine.Put(&Sequence{Name: "bad name"}), ErrInvalidName)
		assert.ErrorIs(t, engine.Put(nil), ErrInvalidName)
		_, ok := engine.Cache().Get("bad name")
		assert.False(t, ok)
	})

	names, err := engine.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

// pausedEngine blocks the first Get after it has read from the inner engine
// until release is closed.
type pausedEngine struct {
	Engine
	read    chan struct{}
	release chan struct{}
	once    bool
}

func (p *pausedEngine) Get(name string) (*Sequence, error) {
	seq, err := p.Engine.Get(name)
	if !p.once {
		p.once = true
		close(p.read)
		<-p.release
	}
	return seq, err
}

func TestCachedEngineReadRacingUpdate(t *testing.T) {
	inner := newTestEngine(t)
	require.NoError(t, inner.Put(&Sequence{Name: "a", Values: []float64{1, 2, 3}}))

	paused := &pausedEngine{Engine: inner, read: make(chan struct{}), release: make(chan struct{})}
	engine := NewCachedEngine(paused, cache.New[*Sequence](8, 0))

	done := make(chan *Sequence)
	go func() {
		seq, err := engine.Get("a")
		assert.NoError(t, err)
		done <- seq
	}()

	select {
	case <-paused.read:
	case <-time.After(5 * time.Second):
		t.Fatal("reader never reached the inner engine")
	}
	require.NoError(t, engine.Update("a", func(seq *Sequence) error {
		seq.Values[0] = 10
		return nil
	}))
	close(paused.release)

	stale := <-done
	assert.Equal(t, 1.0, stale.Values[0])

	_, cached := engine.Cache().Get("a")
	assert.False(t, cached, "stale read must not repopulate the cache")

	got, err := engine.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 2, 3}, got.Values)
}
