// Package system provides the execution backends that run replace kernels.
//
// A System decides where and how the per-element work of an operation runs.
// Every kernel handed to a System is embarrassingly parallel: index i reads
// and writes only position i, so a System is free to split [0, n) into any
// number of sub-ranges and run them in any order.
//
// Two host systems are provided:
//   - Host: runs the whole range on the calling goroutine
//   - Parallel: splits the range into chunks and runs them on a bounded
//     set of goroutines
//
// Accelerator-backed systems live in package gpu.
//
// Example Usage:
//
//	sys := system.NewParallel(system.WithWorkers(8))
//	err := sys.Launch(ctx, len(data), func(lo, hi int) error {
//		for i := lo; i < hi; i++ {
//			data[i] *= 2
//		}
//		return nil
//	})
package system

import (
	"context"
	"errors"
	"reflect"
)

// Errors
var (
	ErrSystemMismatch = errors.New("system: sequences are tagged with different systems")
	ErrInvalidLength  = errors.New("system: negative launch length")
)

// Kernel processes the half-open index range [lo, hi).
// It must only touch positions inside that range.
type Kernel func(lo, hi int) error

// System is an execution backend.
//
// Launch runs kernel over [0, n). Implementations must invoke the kernel so
// that every index is covered exactly once. Launch must return nil without
// calling the kernel when n is zero.
type System interface {
	Name() string
	Launch(ctx context.Context, n int, kernel Kernel) error
}

// Tagged is implemented by sequences that know which System they live on.
type Tagged interface {
	System() System
}

// Host runs kernels sequentially on the calling goroutine.
type Host struct{}

// Name returns "host".
func (Host) Name() string { return "host" }

// Launch runs kernel once over the whole range.
func (Host) Launch(ctx context.Context, n int, kernel Kernel) error {
	if n < 0 {
		return ErrInvalidLength
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return kernel(0, n)
}

// IsHost reports whether sys is the sequential host system.
func IsHost(sys System) bool {
	switch sys.(type) {
	case Host, *Host:
		return true
	}
	return false
}

// Resolve picks the System an operation runs on.
//
// An explicit system always wins. Otherwise the first tag that is neither
// nil nor Host is chosen, so device-resident data pulls the operation onto
// its device. Two different non-host tags cannot be reconciled and yield
// ErrSystemMismatch. With no usable tag the result is Host.
func Resolve(explicit System, tags ...System) (System, error) {
	if explicit != nil {
		return explicit, nil
	}
	var chosen System
	for _, tag := range tags {
		if tag == nil || IsHost(tag) {
			continue
		}
		if chosen == nil {
			chosen = tag
			continue
		}
		if !sameSystem(chosen, tag) {
			return nil, ErrSystemMismatch
		}
	}
	if chosen == nil {
		return Host{}, nil
	}
	return chosen, nil
}

// sameSystem reports whether a and b name the same backend. Value systems
// whose dynamic type is not comparable fall back to a deep comparison
// instead of panicking in ==.
func sameSystem(a, b System) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
