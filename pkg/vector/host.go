package vector

import (
	"github.com/orneryd/replacer/pkg/system"
)

// Host is a sequence stored in host memory.
// Sub windows share storage with their parent.
type Host[T any] struct {
	data []T
	sys  system.System
}

// NewHost allocates a zeroed Host vector of length n.
func NewHost[T any](n int) *Host[T] {
	return &Host[T]{data: make([]T, n), sys: system.Host{}}
}

// HostOf wraps data without copying it.
func HostOf[T any](data []T) *Host[T] {
	return &Host[T]{data: data, sys: system.Host{}}
}

// HostOn wraps data and tags it with sys, so operations over it run on sys
// by default. A nil sys means system.Host.
func HostOn[T any](sys system.System, data []T) *Host[T] {
	if sys == nil {
		sys = system.Host{}
	}
	return &Host[T]{data: data, sys: sys}
}

func (h *Host[T]) Len() int              { return len(h.data) }
func (h *Host[T]) Cap() int              { return len(h.data) }
func (h *Host[T]) At(i int) T            { return h.data[i] }
func (h *Host[T]) Set(i int, v T)        { h.data[i] = v }
func (h *Host[T]) Raw() []T              { return h.data }
func (h *Host[T]) System() system.System { return h.sys }

// Slice returns the backing slice.
func (h *Host[T]) Slice() []T { return h.data }

// Sub returns the window [lo, hi) sharing storage with h.
// It panics when the bounds are out of range, like slicing does.
func (h *Host[T]) Sub(lo, hi int) *Host[T] {
	return &Host[T]{data: h.data[lo:hi:hi], sys: h.sys}
}
