package coloc

import (
	"fmt"
	"sort"

	"imgal/internal/parallel"
	"imgal/pkg/stats"
)

// PearsonROIColoc computes the Pearson correlation of two channels over each
// region of interest of a label map, as produced by spatial.ROIMap. Regions
// are independent, so they are scored in parallel when requested; iteration
// over sorted labels keeps the work assignment deterministic.
//
// Regions with fewer than two pixels carry no correlation and are reported
// as NaN rather than dropped, so the result has exactly one entry per ROI.
//
// Parameters:
//   - a, b: The two channels as flat slices, same length
//   - rois: Label to flat-index list, indices addressing a and b
//   - parallelMode: Score regions on all cores when true
//
// Returns:
//   - Label to Pearson coefficient, one entry per ROI
//   - An error if the channel lengths differ or an ROI index is out of range
func PearsonROIColoc(a, b []float64, rois map[uint64][]int, parallelMode bool) (map[uint64]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: a has %d elements, b has %d", stats.ErrMismatchedLengths, len(a), len(b))
	}

	labels := make([]uint64, 0, len(rois))
	for label, indices := range rois {
		for _, i := range indices {
			if i < 0 || i >= len(a) {
				return nil, fmt.Errorf("roi %d: index %d out of range for %d samples", label, i, len(a))
			}
		}
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	coeffs := make([]float64, len(labels))
	workers := parallel.Workers(parallelMode)

	parallel.For(len(labels), workers, func(lo, hi int) {
		var va, vb []float64
		for k := lo; k < hi; k++ {
			indices := rois[labels[k]]
			va = va[:0]
			vb = vb[:0]
			for _, i := range indices {
				va = append(va, a[i])
				vb = append(vb, b[i])
			}
			coeffs[k] = stats.PearsonFloat64(va, vb)
		}
	})

	out := make(map[uint64]float64, len(labels))
	for k, label := range labels {
		out[label] = coeffs[k]
	}
	return out, nil
}
