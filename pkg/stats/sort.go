// Package stats implements the rank statistics underlying spatially adaptive
// colocalization analysis: a weighted inversion-counting merge sort, the
// weighted Kendall Tau-b rank correlation built on top of it, and the basic
// descriptive statistics shared by the rest of imgal.
package stats

import (
	"errors"
	"fmt"

	"imgal/pkg/array"
)

// ErrMismatchedLengths indicates parallel input slices of different lengths.
var ErrMismatchedLengths = errors.New("mismatched array lengths")

// ErrEmptyData indicates an empty slice where data is required.
var ErrEmptyData = errors.New("empty data array")

// WeightedMergeSort sorts data ascending in place, applying the identical
// permutation to weights, and returns the weighted inversion count: for every
// discordant pair the contribution is the weight of the out-of-order element
// times the cumulative weight of the left-run elements still ahead of it.
//
// The sort is a bottom-up merge over ping-pong buffers. A cumulative-weight
// prefix array is rebuilt from the current pass's source order so each
// inversion contribution is a prefix-sum difference computed in O(1). Inputs
// of length 0 or 1 return a count of 0; lengths that are not a power of two
// get a tail copy on every pass; the sorted result always ends up back in
// the caller's slices regardless of which buffer the final pass wrote.
//
// Parameters:
//   - data: The values to sort, mutated in place
//   - weights: The per-element weights, permuted alongside data
//
// Returns:
//   - The weighted inversion count
//   - An error if len(data) != len(weights)
//
// Reference: https://doi.org/10.1109/TIP.2019.2909194
func WeightedMergeSort[T array.Real](data []T, weights []float64) (float64, error) {
	dl := len(data)
	if dl != len(weights) {
		return 0, fmt.Errorf("%w: data has %d elements, weights has %d", ErrMismatchedLengths, dl, len(weights))
	}
	return weightedMergeSort(data, weights, make([]T, dl), make([]float64, dl), make([]float64, dl)), nil
}

// weightedMergeSort is the buffer-reusing core of WeightedMergeSort. All
// five slices must have identical length; the three scratch buffers are
// overwritten.
func weightedMergeSort[T array.Real](data []T, weights []float64, dataBuf []T, weightsBuf, cumWeights []float64) float64 {
	dl := len(data)
	swaps := 0.0

	// Ping-pong between the caller's slices and the scratch buffers to
	// avoid a copy per pass.
	dataFrom, dataTo := data, dataBuf
	weightsFrom, weightsTo := weights, weightsBuf
	inBuffer := false

	for step := 1; step < dl; step *= 2 {
		// Cumulative weights over the current pass's source order.
		acc := 0.0
		for i, w := range weightsFrom {
			acc += w
			cumWeights[i] = acc
		}

		k := 0
		for left := 0; ; {
			right := left + step
			end := right + step
			if end > dl {
				if right > dl {
					break
				}
				end = dl
			}

			l, r := left, right
			for l < right && r < end {
				if dataFrom[l] > dataFrom[r] {
					// The right element jumps ahead of every remaining
					// left-run element; charge its weight against their
					// cumulative mass.
					base := 0.0
					if l > 0 {
						base = cumWeights[l-1]
					}
					swaps += weightsFrom[r] * (cumWeights[right-1] - base)
					dataTo[k] = dataFrom[r]
					weightsTo[k] = weightsFrom[r]
					k++
					r++
				} else {
					dataTo[k] = dataFrom[l]
					weightsTo[k] = weightsFrom[l]
					k++
					l++
				}
			}
			for l < right {
				dataTo[k] = dataFrom[l]
				weightsTo[k] = weightsFrom[l]
				k++
				l++
			}
			for r < end {
				dataTo[k] = dataFrom[r]
				weightsTo[k] = weightsFrom[r]
				k++
				r++
			}
			left = end
		}

		// Copy any unmerged tail when the length is not a power of two.
		for ; k < dl; k++ {
			dataTo[k] = dataFrom[k]
			weightsTo[k] = weightsFrom[k]
		}

		dataFrom, dataTo = dataTo, dataFrom
		weightsFrom, weightsTo = weightsTo, weightsFrom
		inBuffer = !inBuffer
	}

	// The final pass may have landed in the scratch buffers; the caller's
	// slices must hold the sorted state either way.
	if inBuffer {
		copy(dataTo, dataFrom)
		copy(weightsTo, weightsFrom)
	}

	return swaps
}
