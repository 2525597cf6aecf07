package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"imgal/pkg/array"
)

// Sum returns the sum of all samples.
func Sum(data []float64) float64 {
	return floats.Sum(data)
}

// KahanSum returns the compensated sum of the samples. A running error
// residual recovers the low-order bits a plain accumulation drops, so long
// sums of small values stay exact.
//
// Reference: https://doi.org/10.1145/363707.363723
func KahanSum(data []float64) float64 {
	sum := 0.0
	comp := 0.0
	for _, v := range data {
		adj := v - comp
		next := sum + adj
		comp = (next - sum) - adj
		sum = next
	}
	return sum
}

// Mean returns the arithmetic mean of the samples, or NaN for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return floats.Sum(data) / float64(len(data))
}

// MinMax returns the smallest and largest sample in a single pass. Empty
// input yields the element type's zero value for both.
func MinMax[T array.Real](data []T) (T, T) {
	var min, max T
	if len(data) == 0 {
		return min, max
	}
	min, max = data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// MinMaxFinite returns the smallest and largest finite sample, skipping NaN
// and infinite values. Unlike MinMax it is safe on fields that legitimately
// contain NaN, such as z-score images with undefined pixels. Input with no
// finite sample yields NaN for both.
func MinMaxFinite(data []float64) (float64, float64) {
	min, max := math.NaN(), math.NaN()
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return min, max
}

// Percentile computes the p-th percentile of the samples using linear
// interpolation between closest ranks. p is clamped to [0, 100]; the input
// is not modified.
//
// Parameters:
//   - data: The samples, at least one required
//   - p: The percentile in [0, 100]; out-of-range values are clamped
//
// Returns:
//   - The interpolated percentile value
//   - An error if data is empty
func Percentile(data []float64, p float64) (float64, error) {
	dl := len(data)
	if dl == 0 {
		return 0, fmt.Errorf("%w: percentile of no samples", ErrEmptyData)
	}

	sorted := make([]float64, dl)
	copy(sorted, data)
	sort.Float64s(sorted)

	if p < 0.0 {
		p = 0.0
	} else if p > 100.0 {
		p = 100.0
	}
	if p == 0.0 {
		return sorted[0], nil
	}
	if p == 100.0 {
		return sorted[dl-1], nil
	}

	h := (float64(dl) - 1.0) * p / 100.0
	j := int(math.Floor(h))
	gamma := h - float64(j)
	if gamma < 1e-12 {
		return sorted[j], nil
	}
	return (1.0-gamma)*sorted[j] + gamma*sorted[j+1], nil
}

// PearsonCorrelation computes the Pearson correlation coefficient between
// two same-length datasets. Zero variance in either variable yields NaN.
func PearsonCorrelation[T array.Real](a, b []T) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: a has %d elements, b has %d", ErrMismatchedLengths, len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("%w: correlation needs at least 2 samples", ErrEmptyData)
	}
	return stat.Correlation(array.Float64Slice(a), array.Float64Slice(b), nil), nil
}

// PearsonFloat64 is the unchecked float64 form of PearsonCorrelation for
// callers that have already validated their slices: fewer than two samples
// yield NaN instead of an error.
func PearsonFloat64(a, b []float64) float64 {
	if len(a) < 2 {
		return math.NaN()
	}
	return stat.Correlation(a, b, nil)
}
