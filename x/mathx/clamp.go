package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Percent saturates v into a logical 0..100 level.
func Percent[T constraints.Integer](v T) uint8 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return uint8(v)
}

// Channel saturates v into an 8-bit colour channel.
func Channel[T constraints.Integer](v T) uint8 {
	if v < 0 {
		return 0
	}
	if uint64(v) > 255 {
		return 255
	}
	return uint8(v)
}
