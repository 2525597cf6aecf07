// Package histogram builds intensity histograms over the full dynamic range
// of an image and maps bin indices back to intensity values.
package histogram

import (
	"errors"
	"fmt"

	"imgal/pkg/array"
	"imgal/pkg/stats"
)

// ErrZeroBins indicates a histogram request with no bins.
var ErrZeroBins = errors.New("bin count must be positive")

// DefaultBins is the bin count used by callers that have no reason to pick
// their own.
const DefaultBins = 256

// Histogram counts the samples into bins of equal width spanning the data's
// [min, max] range. The maximum value is clamped into the last bin.
//
// Parameters:
//   - data: The samples to bin, at least one required
//   - bins: The number of bins, at least 1
//
// Returns:
//   - Per-bin counts of length bins
//   - An error if data is empty or bins < 1
func Histogram[T array.Real](data []T, bins int) ([]int64, error) {
	if bins < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrZeroBins, bins)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: histogram of no samples", stats.ErrEmptyData)
	}

	min, max := stats.MinMax(data)
	minF, maxF := float64(min), float64(max)

	hist := make([]int64, bins)
	binWidth := (maxF - minF) / float64(bins)
	if binWidth == 0 {
		// Constant image: everything lands in the first bin.
		hist[0] = int64(len(data))
		return hist, nil
	}
	for _, v := range data {
		idx := int((float64(v) - minF) / binWidth)
		if idx > bins-1 {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist, nil
}

// BinMidpoint returns the intensity at the center of the given bin for a
// histogram spanning [min, max] with the given bin count.
func BinMidpoint(index int, min, max float64, bins int) float64 {
	binWidth := (max - min) / float64(bins)
	return min + (float64(index)+0.5)*binWidth
}

// BinRange returns the intensity interval [start, end) covered by the given
// bin for a histogram spanning [min, max] with the given bin count.
func BinRange(index int, min, max float64, bins int) (float64, float64) {
	binWidth := (max - min) / float64(bins)
	start := min + float64(index)*binWidth
	return start, start + binWidth
}
