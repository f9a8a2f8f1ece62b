// Package replace implements conditional element replacement over sequences.
//
// Four operations are provided, all built on one element-parallel kernel:
//   - Replace: in place, elements equal to an old value become a new value
//   - ReplaceCopy: same test, results written to a destination
//   - ReplaceIf / ReplaceIfStencil: in place, driven by a predicate
//   - ReplaceCopyIf / ReplaceCopyIfStencil: out-of-place predicate variants
//
// The stencil variants evaluate the predicate on a second sequence of the
// same length instead of on the data being replaced.
//
// Each index is decided from that index's inputs alone, so the kernel can
// run in any order and on any number of workers. The backend is picked from
// the sequences' system tags, or named explicitly with WithSystem.
//
// Example:
//
//	data := vector.HostOf([]int{1, 3, 4, 6, 5})
//	err := replace.ReplaceIf(ctx, data, func(v int) bool { return v < 5 }, 0)
//	// data: [0 0 0 6 5]
package replace

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orneryd/replacer/pkg/system"
	"github.com/orneryd/replacer/pkg/vector"
)

// Errors
var (
	ErrInvalidRange   = errors.New("replace: destination is smaller than the input range")
	ErrLengthMismatch = errors.New("replace: stencil length differs from the input range")
)

// Predicate decides whether an element is replaced.
// It must be pure and safe to call concurrently.
type Predicate[S any] func(S) bool

type options struct {
	sys    system.System
	logger *zap.Logger
}

// Option configures a single operation.
type Option func(*options)

// WithSystem runs the operation on sys regardless of the sequences' tags.
func WithSystem(sys system.System) Option {
	return func(o *options) {
		o.sys = sys
	}
}

// WithLogger logs dispatch decisions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Replace sets every element of data equal to oldValue to newValue.
func Replace[T comparable](ctx context.Context, data vector.Mutable[T], oldValue, newValue T, opts ...Option) error {
	return run[T, T](ctx, "replace", data, asOutput(data), data, false, func(v T) bool { return v == oldValue }, newValue, opts)
}

// ReplaceCopy writes src to dst with every element equal to oldValue
// replaced by newValue. src is not modified. dst may be src itself.
// It returns the number of positions written.
func ReplaceCopy[T comparable](ctx context.Context, src vector.Range[T], dst vector.Output[T], oldValue, newValue T, opts ...Option) (int, error) {
	if err := checkCapacity(src.Len(), dst); err != nil {
		return 0, err
	}
	err := run[T, T](ctx, "replace_copy", src, dst, src, false, func(v T) bool { return v == oldValue }, newValue, opts)
	if err != nil {
		return 0, err
	}
	return src.Len(), nil
}

// ReplaceIf sets every element of data satisfying pred to newValue.
func ReplaceIf[T any](ctx context.Context, data vector.Mutable[T], pred Predicate[T], newValue T, opts ...Option) error {
	return run[T, T](ctx, "replace_if", data, asOutput(data), data, false, pred, newValue, opts)
}

// ReplaceIfStencil sets data[i] to newValue wherever pred(stencil[i]) holds.
func ReplaceIfStencil[T, S any](ctx context.Context, data vector.Mutable[T], stencil vector.Range[S], pred Predicate[S], newValue T, opts ...Option) error {
	if stencil.Len() != data.Len() {
		return fmt.Errorf("%w: stencil %d, range %d", ErrLengthMismatch, stencil.Len(), data.Len())
	}
	return run(ctx, "replace_if", data, asOutput(data), stencil, true, pred, newValue, opts)
}

// ReplaceCopyIf writes src to dst with every element satisfying pred
// replaced by newValue. It returns the number of positions written.
func ReplaceCopyIf[T any](ctx context.Context, src vector.Range[T], dst vector.Output[T], pred Predicate[T], newValue T, opts ...Option) (int, error) {
	if err := checkCapacity(src.Len(), dst); err != nil {
		return 0, err
	}
	if err := run[T, T](ctx, "replace_copy_if", src, dst, src, false, pred, newValue, opts); err != nil {
		return 0, err
	}
	return src.Len(), nil
}

// ReplaceCopyIfStencil writes src to dst, using newValue wherever
// pred(stencil[i]) holds. It returns the number of positions written.
func ReplaceCopyIfStencil[T, S any](ctx context.Context, src vector.Range[T], stencil vector.Range[S], dst vector.Output[T], pred Predicate[S], newValue T, opts ...Option) (int, error) {
	if stencil.Len() != src.Len() {
		return 0, fmt.Errorf("%w: stencil %d, range %d", ErrLengthMismatch, stencil.Len(), src.Len())
	}
	if err := checkCapacity(src.Len(), dst); err != nil {
		return 0, err
	}
	if err := run(ctx, "replace_copy_if", src, dst, stencil, true, pred, newValue, opts); err != nil {
		return 0, err
	}
	return src.Len(), nil
}

func checkCapacity[T any](n int, dst vector.Output[T]) error {
	if dst.Cap() < n {
		return fmt.Errorf("%w: capacity %d, range %d", ErrInvalidRange, dst.Cap(), n)
	}
	return nil
}

// mutableOutput lets an in-place sequence without Cap act as its own destination.
type mutableOutput[T any] struct {
	vector.Mutable[T]
}

func (m mutableOutput[T]) Cap() int { return m.Len() }

func asOutput[T any](m vector.Mutable[T]) vector.Output[T] {
	if out, ok := m.(vector.Output[T]); ok {
		return out
	}
	return mutableOutput[T]{m}
}

// invalidator is implemented by sequences that cache a copy elsewhere.
type invalidator interface {
	Invalidate()
}

// run resolves the system and launches the replace kernel. The predicate
// reads from stencil, which is src itself for the non-stencil operations.
func run[T, S any](ctx context.Context, op string, src vector.Range[T], dst vector.Output[T], stencil vector.Range[S], stenciled bool, pred Predicate[S], newValue T, opts []Option) error {
	o := applyOptions(opts)

	tags := []system.System{src.System(), dst.System()}
	if stenciled {
		tags = append(tags, stencil.System())
	}
	sys, err := system.Resolve(o.sys, tags...)
	if err != nil {
		return err
	}

	o.logger.Debug("dispatch",
		zap.String("op", op),
		zap.String("system", sys.Name()),
		zap.Int("n", src.Len()),
		zap.Bool("stencil", stenciled))

	err = sys.Launch(ctx, src.Len(), buildKernel(src, stencil, dst, pred, newValue))
	if inv, ok := dst.(invalidator); ok {
		inv.Invalidate()
	}
	return err
}
