// Package conv provides checked integer conversions.
//
// IntToUint32 narrows arena sizes into node handles and panics on overflow,
// since an automaton that large indicates a programming error. The decoding
// helpers report overflow as an error because their input comes from files.
package conv

import (
	"fmt"
	"math"
)

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// Int64ToInt converts a decoded int64 to int, failing on platforms where it
// does not fit.
func Int64ToInt(n int64) (int, error) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, fmt.Errorf("integer %d out of int range", n)
	}
	return int(n), nil
}

// FloatToInt converts a decoded number to int, failing if it has a
// fractional part or does not fit.
func FloatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("number %v is not an integer", f)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("number %v out of int range", f)
	}
	return int(f), nil
}
