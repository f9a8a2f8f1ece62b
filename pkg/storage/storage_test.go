package storage

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine returns an in-memory engine closed at test end.
func newTestEngine(t *testing.T) *MemoryEngine {
	t.Helper()
	engine := NewMemoryEngine()
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestPutGet(t *testing.T) {
	engine := newTestEngine(t)

	seq := &Sequence{Name: "scores", Values: []float64{1, 3, 4, 6, 5}}
	require.NoError(t, engine.Put(seq))
	assert.False(t, seq.UpdatedAt.IsZero())

	got, err := engine.Get("scores")
	require.NoError(t, err)
	assert.Equal(t, "scores", got.Name)
	assert.Equal(t, []float64{1, 3, 4, 6, 5}, got.Values)
	assert.Equal(t, 5, got.Len())
	assert.True(t, seq.UpdatedAt.Equal(got.UpdatedAt))

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, engine.Put(&Sequence{Name: "scores", Values: []float64{9}}))
		got, err := engine.Get("scores")
		require.NoError(t, err)
		assert.Equal(t, []float64{9}, got.Values)
	})

	t.Run("empty values", func(t *testing.T) {
		require.NoError(t, engine.Put(&Sequence{Name: "empty"}))
		got, err := engine.Get("empty")
		require.NoError(t, err)
		assert.Zero(t, got.Len())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := engine.Get("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNames(t *testing.T) {
	engine := newTestEngine(t)

	bad := []string{"", "has space", "tab\tname", "nl\n", strings.Repeat("x", MaxNameLength+1)}
	for _, name := range bad {
		assert.ErrorIs(t, engine.Put(&Sequence{Name: name}), ErrInvalidName, "name %q", name)
		_, err := engine.Get(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.ErrorIs(t, engine.Put(nil), ErrInvalidName)

	assert.NoError(t, ValidateName("a.b-c_d/e"))
	assert.NoError(t, ValidateName(strings.Repeat("x", MaxNameLength)))
}

func TestUpdate(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.Put(&Sequence{Name: "v", Values: []float64{1, 2, 1}}))

	err := engine.Update("v", func(seq *Sequence) error {
		for i, x := range seq.Values {
			if x == 1 {
				seq.Values[i] = 7
			}
		}
		return nil
	})
	require.NoError(t, err)

	got, err := engine.Get("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 2, 7}, got.Values)

	t.Run("callback error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		err := engine.Update("v", func(seq *Sequence) error {
			seq.Values[0] = -1
			return boom
		})
		assert.ErrorIs(t, err, boom)
		got, err := engine.Get("v")
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 2, 7}, got.Values)
	})

	t.Run("rename is ignored", func(t *testing.T) {
		require.NoError(t, engine.Update("v", func(seq *Sequence) error {
			seq.Name = "other"
			return nil
		}))
		_, err := engine.Get("other")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		err := engine.Update("nope", func(*Sequence) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteAndList(t *testing.T) {
	engine := newTestEngine(t)

	names, err := engine.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, engine.Put(&Sequence{Name: name, Values: []float64{1}}))
	}
	names, err = engine.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.NoError(t, engine.Delete("b"))
	assert.ErrorIs(t, engine.Delete("b"), ErrNotFound)

	names, err = engine.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestChecksum(t *testing.T) {
	data, err := serializeSequence(&Sequence{Name: "x", Values: []float64{1, 2}})
	require.NoError(t, err)

	seq, err := deserializeSequence(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, seq.Values)

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	_, err = deserializeSequence(corrupt)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = deserializeSequence(data[:10])
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	t.Run("corrupt record in the store", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.db.Update(func(txn *badger.Txn) error {
			return txn.Set(sequenceKey("bad"), corrupt)
		}))
		_, err := engine.Get("bad")
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	engine, err := NewBadgerEngine(BadgerOptions{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, engine.Put(&Sequence{Name: "kept", Values: []float64{4, 5, 4, 3, 5}}))
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close(), "double close is a no-op")

	_, err = engine.Get("kept")
	assert.ErrorIs(t, err, ErrStorageClosed)
	assert.ErrorIs(t, engine.Put(&Sequence{Name: "late"}), ErrStorageClosed)

	reopened, err := Open(BadgerOptions{DataDir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 4, 3, 5}, got.Values)
}

func TestOpen(t *testing.T) {
	engine, err := Open(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer engine.Close()
	assert.IsType(t, &MemoryEngine{}, engine)

	_, err = Open(BadgerOptions{})
	assert.Error(t, err, "persistent engine needs a directory")
}

func TestConcurrentPut(t *testing.T) {
	engine := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "seq-" + string(rune('a'+i))
			assert.NoError(t, engine.Put(&Sequence{Name: name, Values: []float64{float64(i)}}))
		}(i)
	}
	wg.Wait()

	names, err := engine.List()
	require.NoError(t, err)
	assert.Len(t, names, 16)
}
