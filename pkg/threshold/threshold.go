// Package threshold selects and applies intensity thresholds. Otsu's method
// is the automatic choice for the per-channel thresholds consumed by the
// colocalization analysis; manual thresholds are applied as-is.
package threshold

import (
	"fmt"

	"imgal/internal/parallel"
	"imgal/pkg/array"
	"imgal/pkg/histogram"
	"imgal/pkg/stats"
)

// OtsuValue computes an intensity threshold with Otsu's method: the bin that
// maximizes the between-class variance of the (assumed bimodal) intensity
// histogram, returned as that bin's midpoint intensity.
//
// Parameters:
//   - data: The image samples, at least one required
//   - bins: The histogram bin count; histogram.DefaultBins is the usual choice
//
// Returns:
//   - The Otsu threshold intensity
//   - An error if data is empty or bins < 1
//
// Reference: https://doi.org/10.1109/TSMC.1979.4310076
func OtsuValue[T array.Real](data []T, bins int) (float64, error) {
	hist, err := histogram.Histogram(data, bins)
	if err != nil {
		return 0, fmt.Errorf("otsu threshold: %w", err)
	}
	min, max := stats.MinMax(data)

	histSum := 0.0
	histInten := 0.0
	for i, v := range hist {
		histSum += float64(v)
		histInten += float64(i) * float64(v)
	}

	// Sweep candidate thresholds k, tracking the between-class variance.
	bcvMax := 0.0
	kStar := 0
	intenK := 0.0
	nK := 0.0
	for i := 0; i < len(hist)-1; i++ {
		v := float64(hist[i])
		intenK += float64(i) * v
		nK += v

		bcv := 0.0
		denom := nK * (histSum - nK)
		if denom != 0 {
			num := (nK/histSum)*histInten - intenK
			bcv = num * num / denom
		}
		if bcv >= bcvMax {
			bcvMax = bcv
			kStar = i
		}
	}

	return histogram.BinMidpoint(kStar, float64(min), float64(max), bins), nil
}

// OtsuMask thresholds the samples at the Otsu value, marking samples at or
// above the threshold true.
func OtsuMask[T array.Real](data []T, bins int, parallelMode bool) ([]bool, error) {
	value, err := OtsuValue(data, bins)
	if err != nil {
		return nil, err
	}
	return manualMaskFloat(data, value, parallelMode), nil
}

// ManualMask marks samples at or above the given threshold value true. Only
// samples below the threshold are masked out.
func ManualMask[T array.Real](data []T, value T, parallelMode bool) []bool {
	return manualMaskFloat(data, float64(value), parallelMode)
}

func manualMaskFloat[T array.Real](data []T, value float64, parallelMode bool) []bool {
	mask := make([]bool, len(data))
	parallel.For(len(data), parallel.Workers(parallelMode), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			mask[i] = float64(data[i]) >= value
		}
	})
	return mask
}
