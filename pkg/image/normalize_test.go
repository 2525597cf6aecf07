package image

import (
	"errors"
	"math"
	"testing"

	"imgal/pkg/stats"
)

func TestPercentileNormalizeFullRange(t *testing.T) {
	// With the 0th and 100th percentiles the rescale is a plain min/max
	// normalization: 0 at the minimum, 1 at the maximum.
	data := []float64{10, 20, 30, 40, 50}

	got, err := PercentileNormalize(data, 0, 100, false, 0, false)
	if err != nil {
		t.Fatalf("PercentileNormalize failed: %v", err)
	}

	want := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPercentileNormalizeOutlierRobustness(t *testing.T) {
	// One hot pixel among a flat ramp: an inner percentile window keeps the
	// ramp spread across [0, 1] instead of crushing it near zero.
	data := make([]float64, 101)
	for i := range data {
		data[i] = float64(i)
	}
	data[100] = 1e6

	got, err := PercentileNormalize(data, 5, 95, false, 0, false)
	if err != nil {
		t.Fatalf("PercentileNormalize failed: %v", err)
	}

	if got[50] < 0.3 || got[50] > 0.7 {
		t.Errorf("mid-ramp sample = %v, want near 0.5 despite the outlier", got[50])
	}
	if got[100] <= 1.0 {
		t.Errorf("unclipped outlier = %v, want above 1", got[100])
	}
}

func TestPercentileNormalizeClip(t *testing.T) {
	data := []float64{0, 25, 50, 75, 100}

	got, err := PercentileNormalize(data, 20, 80, true, 0, false)
	if err != nil {
		t.Fatalf("PercentileNormalize failed: %v", err)
	}
	for i, v := range got {
		if v < 0.0 || v > 1.0 {
			t.Errorf("clipped got[%d] = %v, want within [0, 1]", i, v)
		}
	}
	if got[0] != 0.0 {
		t.Errorf("sample below the lower percentile = %v, want clipped to 0", got[0])
	}
	if got[4] != 1.0 {
		t.Errorf("sample above the upper percentile = %v, want clipped to 1", got[4])
	}
}

func TestPercentileNormalizeConstantImage(t *testing.T) {
	// A zero percentile range divides by epsilon alone instead of blowing up.
	got, err := PercentileNormalize([]uint16{7, 7, 7}, 0, 100, false, 0, false)
	if err != nil {
		t.Fatalf("PercentileNormalize failed: %v", err)
	}
	for i, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("got[%d] = %v, want finite", i, v)
		}
	}
}

func TestPercentileNormalizeParallelMatchesSequential(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64((i * 7919) % 1000)
	}

	seq, err := PercentileNormalize(data, 1, 99, true, 0, false)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := PercentileNormalize(data, 1, 99, true, 0, true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("got[%d]: sequential %v, parallel %v", i, seq[i], par[i])
		}
	}
}

func TestPercentileNormalizeEmpty(t *testing.T) {
	if _, err := PercentileNormalize([]float64{}, 0, 100, false, 0, false); !errors.Is(err, stats.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}
