package simulation

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"imgal/pkg/spatial"
)

func TestGaussianMetaballs2DPeakAtCenter(t *testing.T) {
	centers := mat.NewDense(1, 2, []float64{16, 16})
	img, err := GaussianMetaballs2D(centers, []float64{4}, []float64{100}, []float64{2}, 5.0, 32, 32, false)
	if err != nil {
		t.Fatalf("GaussianMetaballs2D: %v", err)
	}

	if got := img.At(16, 16); math.Abs(got-105.0) > 1e-9 {
		t.Errorf("value at blob center = %v, want 105", got)
	}
	for _, v := range img.Data {
		if v < 5.0 {
			t.Fatalf("value %v fell below the background level", v)
		}
	}
}

func TestGaussianMetaballs2DMonotoneFalloff(t *testing.T) {
	centers := mat.NewDense(1, 2, []float64{16, 16})
	img, err := GaussianMetaballs2D(centers, []float64{4}, []float64{100}, []float64{2}, 0.0, 32, 32, false)
	if err != nil {
		t.Fatalf("GaussianMetaballs2D: %v", err)
	}

	// Values along the row through the center strictly decrease away from it.
	for x := 17; x < 32; x++ {
		if img.At(x, 16) >= img.At(x-1, 16) {
			t.Fatalf("value at x=%d did not decrease: %v >= %v", x, img.At(x, 16), img.At(x-1, 16))
		}
	}
}

func TestGaussianMetaballs2DAdditive(t *testing.T) {
	// Two coincident blobs double the contribution of one.
	one := mat.NewDense(1, 2, []float64{8, 8})
	two := mat.NewDense(2, 2, []float64{8, 8, 8, 8})

	single, err := GaussianMetaballs2D(one, []float64{3}, []float64{50}, []float64{2}, 0, 16, 16, false)
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	double, err := GaussianMetaballs2D(two, []float64{3, 3}, []float64{50, 50}, []float64{2, 2}, 0, 16, 16, false)
	if err != nil {
		t.Fatalf("double: %v", err)
	}

	for i := range single.Data {
		if math.Abs(double.Data[i]-2*single.Data[i]) > 1e-9 {
			t.Fatalf("pixel %d: double = %v, want %v", i, double.Data[i], 2*single.Data[i])
		}
	}
}

func TestLogisticMetaballs2DPlateau(t *testing.T) {
	centers := mat.NewDense(1, 2, []float64{16, 16})
	img, err := LogisticMetaballs2D(centers, []float64{6}, []float64{200}, []float64{0.5}, 10.0, 32, 32, false)
	if err != nil {
		t.Fatalf("LogisticMetaballs2D: %v", err)
	}

	// Deep inside the radius the profile sits near the full intensity, far
	// outside it falls back to the background.
	if got := img.At(16, 16); got < 199.0 {
		t.Errorf("plateau value = %v, want near 200", got)
	}
	if got := img.At(0, 0); math.Abs(got-10.0) > 1e-6 {
		t.Errorf("far-field value = %v, want background 10", got)
	}
}

func TestMetaballs3DParallelMatchesSequential(t *testing.T) {
	centers := mat.NewDense(2, 3, []float64{4, 5, 6, 10, 9, 8})
	radii := []float64{3, 2}
	intensities := []float64{80, 40}
	falloffs := []float64{2, 1.5}

	seq, err := GaussianMetaballs3D(centers, radii, intensities, falloffs, 1.0, 14, 13, 12, false)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := GaussianMetaballs3D(centers, radii, intensities, falloffs, 1.0, 14, 13, 12, true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i := range seq.Data {
		if seq.Data[i] != par.Data[i] {
			t.Fatalf("voxel %d: sequential %v, parallel %v", i, seq.Data[i], par.Data[i])
		}
	}
}

func TestMetaballsBadSpec(t *testing.T) {
	centers := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	tests := []struct {
		name                        string
		radii, intensities, falloff []float64
	}{
		{"short radii", []float64{1}, []float64{1, 1}, []float64{1, 1}},
		{"short intensities", []float64{1, 1}, []float64{1}, []float64{1, 1}},
		{"short falloffs", []float64{1, 1}, []float64{1, 1}, []float64{1}},
		{"non-positive radius", []float64{1, 0}, []float64{1, 1}, []float64{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GaussianMetaballs2D(centers, tt.radii, tt.intensities, tt.falloff, 0, 8, 8, false)
			if !errors.Is(err, ErrBadBlobSpec) {
				t.Errorf("expected bad blob spec error, got %v", err)
			}
		})
	}

	threeD := mat.NewDense(1, 3, []float64{1, 2, 3})
	if _, err := GaussianMetaballs2D(threeD, []float64{1}, []float64{1}, []float64{1}, 0, 8, 8, false); !errors.Is(err, ErrBadBlobSpec) {
		t.Errorf("expected dimensionality error, got %v", err)
	}
}

func TestRandomCentersSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	centers, err := RandomCenters(20, []float64{100, 100}, 8.0, rng)
	if err != nil {
		t.Fatalf("RandomCenters: %v", err)
	}

	rows, cols := centers.Dims()
	if rows != 20 || cols != 2 {
		t.Fatalf("centers shape %dx%d, want 20x2", rows, cols)
	}

	points := make([][]float64, rows)
	for i := range points {
		points[i] = []float64{centers.At(i, 0), centers.At(i, 1)}
	}
	if min := spatial.MinSeparation(points); min < 8.0 {
		t.Errorf("minimum pairwise separation = %v, want >= 8", min)
	}
}

func TestRandomCentersDeterministic(t *testing.T) {
	a, err := RandomCenters(5, []float64{50, 50, 50}, 3.0, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	b, err := RandomCenters(5, []float64{50, 50, 50}, 3.0, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}
	if !mat.Equal(a, b) {
		t.Error("identical seeds produced different center layouts")
	}
}

func TestRandomCentersImpossible(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := RandomCenters(50, []float64{10, 10}, 9.0, rng); !errors.Is(err, ErrPlacementFailed) {
		t.Errorf("expected placement failure, got %v", err)
	}
}
