// Package distribution provides the probability distribution helpers used by
// the significance machinery and the simulation fixtures.
package distribution

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"imgal/internal/parallel"
)

// NormalizedGaussian samples a Gaussian probability density at bins evenly
// spaced points across a range and normalizes the result to sum to 1.
//
// Parameters:
//   - sigma: The standard deviation (width) of the Gaussian
//   - bins: The number of discrete sample points
//   - rng: The total width of the sampling range
//   - center: The mean (peak position) of the Gaussian
//   - parallelMode: Parallel or sequential evaluation
//
// Returns:
//   - The normalized distribution of length bins; nil if bins < 1
func NormalizedGaussian(sigma float64, bins int, rng, center float64, parallelMode bool) []float64 {
	if bins < 1 {
		return nil
	}

	gauss := make([]float64, bins)
	width := rng / (float64(bins) - 1.0)
	sigmaSq := 2.0 * sigma * sigma
	parallel.For(bins, parallel.Workers(parallelMode), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			d := float64(i)*width - center
			gauss[i] = math.Exp(-(d * d) / sigmaSq)
		}
	})

	sum := 0.0
	for _, v := range gauss {
		sum += v
	}
	for i := range gauss {
		gauss[i] /= sum
	}
	return gauss
}

// InverseNormalCDF returns the quantile Φ⁻¹(p) of the standard normal
// distribution. Probabilities outside the open interval (0, 1) have no
// finite quantile and yield NaN.
func InverseNormalCDF(p float64) float64 {
	if p <= 0.0 || p >= 1.0 || math.IsNaN(p) {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile(p)
}
