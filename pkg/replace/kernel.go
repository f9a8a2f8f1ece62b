package replace

import (
	"github.com/orneryd/replacer/pkg/system"
	"github.com/orneryd/replacer/pkg/vector"
)

// buildKernel returns the per-range replace step.
//
// For each index i the kernel writes newValue to dst[i] when pred(stencil[i])
// holds and src[i] otherwise. When dst shares storage with src the copy is
// skipped and only matching positions are written.
func buildKernel[T, S any](src vector.Range[T], stencil vector.Range[S], dst vector.Output[T], pred Predicate[S], newValue T) system.Kernel {
	srcRaw, srcOK := src.(vector.Raw[T])
	stRaw, stOK := stencil.(vector.Raw[S])
	dstRaw, dstOK := dst.(vector.Raw[T])

	if srcOK && stOK && dstOK {
		s, c, d := srcRaw.Raw(), stRaw.Raw(), dstRaw.Raw()
		if sameStorage(s, d) {
			return func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					if pred(c[i]) {
						d[i] = newValue
					}
				}
				return nil
			}
		}
		return func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				if pred(c[i]) {
					d[i] = newValue
				} else {
					d[i] = s[i]
				}
			}
			return nil
		}
	}

	return func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if pred(stencil.At(i)) {
				dst.Set(i, newValue)
			} else {
				dst.Set(i, src.At(i))
			}
		}
		return nil
	}
}

// sameStorage reports whether a and b start at the same element.
func sameStorage[T any](a, b []T) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
