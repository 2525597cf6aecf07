// Package integration implements the numeric quadrature rules used by the
// phasor transform and the simulation fixtures.
package integration

import (
	"errors"
	"fmt"

	"imgal/pkg/stats"
)

// ErrOddSubintervals indicates input whose subinterval count Simpson's 1/3
// rule cannot handle.
var ErrOddSubintervals = errors.New("odd number of subintervals")

// Midpoint integrates uniformly sampled values with the midpoint rule:
// deltaX times the compensated sum of the samples.
func Midpoint(x []float64, deltaX float64) float64 {
	return deltaX * stats.KahanSum(x)
}

// Simpson integrates uniformly sampled values with Simpson's 1/3 rule,
// which requires an even number of subintervals (odd sample count).
func Simpson(x []float64, deltaX float64) (float64, error) {
	if len(x) < 3 {
		return 0, fmt.Errorf("%w: need at least 3 samples, got %d", ErrOddSubintervals, len(x))
	}
	n := len(x) - 1
	if n%2 != 0 {
		return 0, fmt.Errorf("%w: Simpson's 1/3 rule needs an even subinterval count, got %d", ErrOddSubintervals, n)
	}

	integral := x[0] + x[n]
	for i := 1; i < n; i++ {
		coef := 2.0
		if i%2 == 1 {
			coef = 4.0
		}
		integral += coef * x[i]
	}
	return deltaX / 3.0 * integral, nil
}

// CompositeSimpson integrates uniformly sampled values with Simpson's rule,
// falling back to a trapezoid for the final subinterval when the count is
// odd.
func CompositeSimpson(x []float64, deltaX float64) float64 {
	if len(x) < 2 {
		return 0
	}
	n := len(x) - 1
	if n%2 == 0 {
		v, _ := Simpson(x, deltaX)
		return v
	}
	v, _ := Simpson(x[:n], deltaX)
	return v + deltaX/2.0*(x[n-1]+x[n])
}
