// Package image provides whole-image intensity operations.
package image

import (
	"fmt"

	"imgal/internal/parallel"
	"imgal/pkg/array"
	"imgal/pkg/stats"
)

// DefaultNormalizeEpsilon guards the percentile range against division by
// zero on constant images.
const DefaultNormalizeEpsilon = 1e-20

// PercentileNormalize rescales samples so the minPct percentile maps to 0
// and the maxPct percentile maps to 1. Percentile-based bounds make the
// normalization robust to hot pixels and other intensity outliers that would
// dominate a plain min/max rescale. Values outside the percentile range land
// outside [0, 1] unless clip is set.
//
// Parameters:
//   - data: The image samples, at least one required
//   - minPct, maxPct: The lower and upper percentile bounds in [0, 100]
//   - clip: Clamp the normalized values to [0, 1]
//   - epsilon: Added to the percentile range before dividing; at or below
//     zero selects DefaultNormalizeEpsilon
//   - parallelMode: Rescale on all cores when true
//
// Returns:
//   - The normalized samples as float64
//   - An error if data is empty
func PercentileNormalize[T array.Real](data []T, minPct, maxPct float64, clip bool, epsilon float64, parallelMode bool) ([]float64, error) {
	samples := array.Float64Slice(data)

	perMin, err := stats.Percentile(samples, minPct)
	if err != nil {
		return nil, fmt.Errorf("percentile normalize: %w", err)
	}
	perMax, err := stats.Percentile(samples, maxPct)
	if err != nil {
		return nil, fmt.Errorf("percentile normalize: %w", err)
	}
	if epsilon <= 0 {
		epsilon = DefaultNormalizeEpsilon
	}

	denom := perMax - perMin + epsilon
	parallel.For(len(samples), parallel.Workers(parallelMode), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v := (samples[i] - perMin) / denom
			if clip {
				if v < 0.0 {
					v = 0.0
				} else if v > 1.0 {
					v = 1.0
				}
			}
			samples[i] = v
		}
	})
	return samples, nil
}
