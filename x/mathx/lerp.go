package mathx

import "math"

// Lerp returns a + (b-a)*t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpU8 interpolates between two 8-bit values with t clamped to [0,1],
// rounding to the nearest integer.
func LerpU8(a, b uint8, t float64) uint8 {
	t = Clamp(t, 0, 1)
	return RoundU8(Lerp(float64(a), float64(b), t))
}

// RoundU8 rounds f to the nearest integer and saturates into [0,255].
func RoundU8(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	r := math.Round(f)
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

// Frac returns the fractional position of x within a period, in [0,1).
// A non-positive period yields 0.
func Frac(x, period float64) float64 {
	if period <= 0 {
		return 0
	}
	f := math.Mod(x, period) / period
	if f < 0 {
		f += 1
	}
	return f
}
