// Package vector provides the sequence abstractions replace operations run over.
//
// Every sequence carries a system tag (see package system) naming the
// execution backend its memory belongs to. Operations resolve the backend
// from these tags unless the caller names one explicitly.
//
// Provided sequences:
//   - Host: a slice in host memory, tagged with system.Host
//   - Device: accelerator-owned memory with a host shadow copy
//   - Discard: a write-only sink that drops every value
//
// Retag wraps any sequence so that it reports a different system, which is
// how callers route an operation onto a custom backend without copying data.
package vector

import (
	"github.com/orneryd/replacer/pkg/system"
)

// Range is a read-only, randomly addressable sequence.
type Range[T any] interface {
	system.Tagged
	Len() int
	At(i int) T
}

// Mutable is a Range that can be written in place.
type Mutable[T any] interface {
	Range[T]
	Set(i int, v T)
}

// Output is a write-only destination.
// Cap reports how many leading positions may be written.
type Output[T any] interface {
	system.Tagged
	Cap() int
	Set(i int, v T)
}

// Raw is implemented by sequences backed by a contiguous slice.
// Kernels use it to bypass per-element interface calls.
type Raw[T any] interface {
	Raw() []T
}

// Equal reports whether a and b hold the same values in the same order.
func Equal[T comparable](a, b Range[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

// Collect copies a Range into a new slice.
func Collect[T any](r Range[T]) []T {
	if raw, ok := r.(Raw[T]); ok {
		return append([]T(nil), raw.Raw()...)
	}
	out := make([]T, r.Len())
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
