package vector

import (
	"github.com/orneryd/replacer/pkg/system"
)

// retagged overrides the system tag of a wrapped sequence.
type retagged[T any] struct {
	r   Range[T]
	sys system.System
}

func (t retagged[T]) Len() int              { return t.r.Len() }
func (t retagged[T]) At(i int) T            { return t.r.At(i) }
func (t retagged[T]) System() system.System { return t.sys }

type retaggedMutable[T any] struct {
	m   Mutable[T]
	sys system.System
}

func (t retaggedMutable[T]) Len() int              { return t.m.Len() }
func (t retaggedMutable[T]) At(i int) T            { return t.m.At(i) }
func (t retaggedMutable[T]) Set(i int, v T)        { t.m.Set(i, v) }
func (t retaggedMutable[T]) System() system.System { return t.sys }

type retaggedOutput[T any] struct {
	o   Output[T]
	sys system.System
}

func (t retaggedOutput[T]) Cap() int              { return t.o.Cap() }
func (t retaggedOutput[T]) Set(i int, v T)        { t.o.Set(i, v) }
func (t retaggedOutput[T]) System() system.System { return t.sys }

// Retag returns r reporting sys as its system. The data is not copied.
func Retag[T any](r Range[T], sys system.System) Range[T] {
	return retagged[T]{r: r, sys: sys}
}

// RetagMutable is Retag for in-place sequences.
func RetagMutable[T any](m Mutable[T], sys system.System) Mutable[T] {
	return retaggedMutable[T]{m: m, sys: sys}
}

// RetagOutput is Retag for destinations.
func RetagOutput[T any](o Output[T], sys system.System) Output[T] {
	return retaggedOutput[T]{o: o, sys: sys}
}
