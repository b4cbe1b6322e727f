package utils

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// AlignUp rounds value up to the next multiple of align.
// An align <= 0 returns value unchanged.
func AlignUp[T constraints.Integer](value, align T) T {
	if align <= 0 {
		return value
	}
	return CeilDiv(value, align) * align
}

// Product returns the product of all values, 1 for an empty list.
func Product[T constraints.Integer](values ...T) T {
	var p T = 1
	for _, v := range values {
		p *= v
	}
	return p
}

// TailOf returns the size of the last chunk when extent is split in chunks of factor.
func TailOf[T constraints.Integer](extent, factor T) T {
	chunks := CeilDiv(extent, factor)
	return extent - (chunks-1)*factor
}
