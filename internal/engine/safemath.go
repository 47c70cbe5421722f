package engine

import "math"

// SafeDiv divides n by d, returning def whenever the division is degenerate:
// zero or non-finite denominator, non-finite numerator, or a non-finite
// result. Downstream state never sees NaN or Infinity.
func SafeDiv(n, d, def float64) float64 {
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return def
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	q := n / d
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return def
	}
	return q
}

// Sanitize replaces a non-finite value with def.
func Sanitize(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
