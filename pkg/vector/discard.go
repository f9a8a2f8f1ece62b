package vector

import (
	"math"

	"github.com/orneryd/replacer/pkg/system"
)

// Discard is an Output that accepts any number of writes and keeps none.
// It carries no system tag, so it never influences backend selection.
type Discard[T any] struct{}

// Cap is unbounded.
func (Discard[T]) Cap() int { return math.MaxInt }

// Set drops v.
func (Discard[T]) Set(int, T) {}

// System returns nil.
func (Discard[T]) System() system.System { return nil }
