// Package allocation lazily enumerates every integer weight vector of a
// given length whose entries are multiples of step and sum to 100.
package allocation

import (
	"fmt"

	"frontier/internal/apperr"
)

// Vector is an allocation: A non-negative integers, multiples of step,
// summing to 100. The enumerator reuses one Vector's backing array across
// yields — callers that retain a Vector past the current yield must Clone it.
type Vector []int32

// Clone returns an independent copy safe to retain past the current yield.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// NumNonZero returns how many entries of v are non-zero.
func (v Vector) NumNonZero() int {
	n := 0
	for _, w := range v {
		if w != 0 {
			n++
		}
	}
	return n
}

// Enumerate lazily produces every allocation of the given length whose
// entries are multiples of step and sum to 100, calling yield once per
// vector in lexicographic order. Enumeration stops early if yield returns
// false. Returns apperr.ErrInvalidStep if 100 is not a multiple of step.
//
// The same backing buffer is reused across yields (Design Note 1): never
// allocate per-vector here.
func Enumerate(assets, step int, yield func(Vector) bool) error {
	if step <= 0 || 100%step != 0 {
		return fmt.Errorf("step=%d: %w", step, apperr.ErrInvalidStep)
	}
	if assets <= 0 {
		return fmt.Errorf("assets must be > 0, got %d", assets)
	}
	buf := make(Vector, assets)
	var recurse func(idx, sum int) bool
	recurse = func(idx, sum int) bool {
		if idx == assets-1 {
			buf[idx] = int32(100 - sum)
			ok := yield(buf)
			buf[idx] = 0
			return ok
		}
		for v := 0; sum+v <= 100; v += step {
			buf[idx] = int32(v)
			if !recurse(idx+1, sum+v) {
				buf[idx] = 0
				return false
			}
		}
		buf[idx] = 0
		return true
	}
	recurse(0, 0)
	return nil
}

// Count computes the number of vectors Enumerate would yield for the given
// (assets, step) pair directly, as the binomial C(100/step+assets-1, assets-1),
// without enumerating — used for progress reporting and pipeline slicing.
func Count(assets, step int) int {
	n := 100/step + assets - 1
	k := assets - 1
	return int(binomial(int64(n), int64(k)))
}

func binomial(n, k int64) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var result int64 = 1
	for i := int64(0); i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
