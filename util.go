package textbuf

import "golang.org/x/exp/constraints"

// NextPowerOfTwo returns the smallest power of two that is >= n.
// Values below 1 yield 1.
func NextPowerOfTwo[T constraints.Integer](n T) T {
	p := T(1)
	for p < n {
		p <<= 1
	}
	return p
}
