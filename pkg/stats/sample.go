package stats

// EffectiveSampleSize returns Kish's effective sample size of a weighted
// sample, (Σw)² / Σw². Uniform weights recover the plain sample count;
// concentrating mass on few observations shrinks the result toward 1.
// All-zero weights yield 0.
func EffectiveSampleSize(weights []float64) float64 {
	sumW := 0.0
	sumSqW := 0.0
	for _, w := range weights {
		sumW += w
		sumSqW += w * w
	}
	if sumSqW == 0.0 {
		return 0.0
	}
	return sumW * sumW / sumSqW
}
