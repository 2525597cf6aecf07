package coloc

import (
	"math"

	"imgal/internal/parallel"
	"imgal/pkg/array"
	"imgal/pkg/distribution"
)

// DefaultAlpha is the family-wise significance level used when the caller
// passes a non-positive alpha.
const DefaultAlpha = 0.05

// SignificanceMask marks the scores of a z-score field that remain
// significant after a Bonferroni correction for the number of simultaneous
// tests. Each score is a two-sided test against the standard normal null,
// so the critical value is the normal quantile at 1 − alpha/(2n); a score
// is significant when its magnitude exceeds it. NaN scores are never
// significant.
//
// An alpha at or below zero falls back to DefaultAlpha. parallelMode runs
// the elementwise comparison on all cores.
func SignificanceMask(scores []float64, alpha float64, parallelMode bool) []bool {
	mask := make([]bool, len(scores))
	if len(scores) == 0 {
		return mask
	}
	if alpha <= 0 {
		alpha = DefaultAlpha
	}

	zCrit := distribution.InverseNormalCDF(1.0 - alpha/(2.0*float64(len(scores))))
	parallel.For(len(scores), parallel.Workers(parallelMode), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			// math.Abs(NaN) > zCrit is false, so NaN scores stay unmasked.
			mask[i] = math.Abs(scores[i]) > zCrit
		}
	})
	return mask
}

// SignificanceMask2D applies SignificanceMask to a 2D z-score image and
// returns the mask with the same shape.
func SignificanceMask2D(scores *array.Image2D, alpha float64, parallelMode bool) *array.Mask2D {
	mask := array.NewMask2D(scores.Width, scores.Height)
	copy(mask.Data, SignificanceMask(scores.Data, alpha, parallelMode))
	return mask
}

// SignificanceMask3D applies SignificanceMask to a 3D z-score volume and
// returns the mask with the same shape.
func SignificanceMask3D(scores *array.Image3D, alpha float64, parallelMode bool) *array.Mask3D {
	mask := array.NewMask3D(scores.Width, scores.Height, scores.Depth)
	copy(mask.Data, SignificanceMask(scores.Data, alpha, parallelMode))
	return mask
}
