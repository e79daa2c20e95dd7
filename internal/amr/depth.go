package amr

import "math"

// NormalizedDepth is a read depth of at least one. Zero-coverage positions
// are reported against a depth of one so percentages come out as 0%
// instead of dividing by zero.
type NormalizedDepth int

// NormalizeDepth clamps d to a minimum of one.
func NormalizeDepth(d int) NormalizedDepth {
	if d < 1 {
		return 1
	}
	return NormalizedDepth(d)
}

// Percent returns count as a percentage of the depth, rounded to two
// decimal places (ties to even).
func (d NormalizedDepth) Percent(count int) float64 {
	return math.RoundToEven(float64(count)*100/float64(d)*100) / 100
}
