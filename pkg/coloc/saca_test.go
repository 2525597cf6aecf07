package coloc

import (
	"errors"
	"math"
	"testing"

	"imgal/pkg/array"
)

// blobPair builds two 32x32 channels, each carrying a Gaussian blob of the
// given centers on a zero background.
func blobPair(cxA, cyA, cxB, cyB float64) (*array.Image2D, *array.Image2D) {
	const size = 32
	a, _ := array.NewImage2D(size, size)
	b, _ := array.NewImage2D(size, size)

	const sigma = 4.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x), float64(y)
			dA := (fx-cxA)*(fx-cxA) + (fy-cyA)*(fy-cyA)
			dB := (fx-cxB)*(fx-cxB) + (fy-cyB)*(fy-cyB)
			a.Set(x, y, 100.0*math.Exp(-dA/(2*sigma*sigma)))
			b.Set(x, y, 100.0*math.Exp(-dB/(2*sigma*sigma)))
		}
	}
	return a, b
}

func TestSACA2DShapeMismatch(t *testing.T) {
	a, _ := array.NewImage2D(10, 10)
	b, _ := array.NewImage2D(10, 12)

	if _, err := SACA2D(a, b, 0, 0, false); !errors.Is(err, array.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch error, got %v", err)
	}
}

func TestSACA2DInvalidKernelParams(t *testing.T) {
	a, _ := array.NewImage2D(8, 8)
	b, _ := array.NewImage2D(8, 8)

	tests := []struct {
		name   string
		params KernelParams
	}{
		{"radius below one", KernelParams{InitialRadius: 0.5, RadiusStep: 1.2, MaxRadius: 4, SeparationLambda: 1}},
		{"step not growing", KernelParams{InitialRadius: 2, RadiusStep: 1.0, MaxRadius: 4, SeparationLambda: 1}},
		{"max below initial", KernelParams{InitialRadius: 4, RadiusStep: 1.2, MaxRadius: 2, SeparationLambda: 1}},
		{"non-positive lambda", KernelParams{InitialRadius: 2, RadiusStep: 1.2, MaxRadius: 4, SeparationLambda: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SACA2DWithParams(a, b, 0, 0, tt.params, false); !errors.Is(err, ErrInvalidKernelParams) {
				t.Errorf("expected invalid kernel params error, got %v", err)
			}
		})
	}
}

func TestRadiusSchedule(t *testing.T) {
	p := DefaultKernelParams2D()
	radii := p.radiusSchedule()

	if len(radii) == 0 {
		t.Fatal("empty radius schedule")
	}
	if radii[0] != p.InitialRadius {
		t.Errorf("schedule starts at %v, want %v", radii[0], p.InitialRadius)
	}
	if radii[len(radii)-1] != p.MaxRadius {
		t.Errorf("schedule ends at %v, want %v", radii[len(radii)-1], p.MaxRadius)
	}
	for i := 1; i < len(radii); i++ {
		if radii[i] <= radii[i-1] {
			t.Errorf("schedule not strictly increasing at %d: %v", i, radii)
		}
	}
}

func TestSACA2DColocalizedBlobs(t *testing.T) {
	// Identical channels: the blob region must score positive.
	a, b := blobPair(16, 16, 16, 16)

	z, err := SACA2D(a, b, 1.0, 1.0, false)
	if err != nil {
		t.Fatalf("SACA2D: %v", err)
	}

	center := z.At(16, 16)
	if math.IsNaN(center) || center <= 0 {
		t.Errorf("z at blob center = %v, want positive", center)
	}
	if Positive(z.Data) == 0 {
		t.Error("no positive scores over perfectly colocalized channels")
	}
}

func TestSACA2DDisjointBlobs(t *testing.T) {
	// Blobs in opposite corners. At either blob's core the other channel
	// stays below threshold across the whole kernel, every sample gates to
	// zero weight, and the score is undefined.
	a, b := blobPair(8, 8, 24, 24)

	z, err := SACA2D(a, b, 1.0, 1.0, false)
	if err != nil {
		t.Fatalf("SACA2D: %v", err)
	}

	if v := z.At(8, 8); !math.IsNaN(v) {
		t.Errorf("z at first blob core = %v, want NaN", v)
	}
	if v := z.At(24, 24); !math.IsNaN(v) {
		t.Errorf("z at second blob core = %v, want NaN", v)
	}
}

func TestSACA2DThresholdBoundaryInclusive(t *testing.T) {
	// A sample sitting exactly at the threshold keeps its falloff weight, so
	// thresholding at the image minimum must score identically to any
	// threshold below it.
	a, b := blobPair(16, 16, 16, 16)
	min := a.Data[0]
	for _, v := range a.Data {
		if v < min {
			min = v
		}
	}

	at, err := SACA2D(a, b, min, min, false)
	if err != nil {
		t.Fatalf("threshold at minimum: %v", err)
	}
	below, err := SACA2D(a, b, min/2, min/2, false)
	if err != nil {
		t.Fatalf("threshold below minimum: %v", err)
	}

	for i := range at.Data {
		x, y := at.Data[i], below.Data[i]
		if math.IsNaN(x) && math.IsNaN(y) {
			continue
		}
		if x != y {
			t.Fatalf("score[%d]: threshold at minimum %v, below minimum %v", i, x, y)
		}
	}
}

func TestSACA2DParallelMatchesSequential(t *testing.T) {
	a, b := blobPair(12, 14, 14, 12)

	seq, err := SACA2D(a, b, 1.0, 1.0, false)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := SACA2D(a, b, 1.0, 1.0, true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for i := range seq.Data {
		s, p := seq.Data[i], par.Data[i]
		if math.IsNaN(s) && math.IsNaN(p) {
			continue
		}
		if s != p {
			t.Fatalf("score[%d]: sequential %v, parallel %v", i, s, p)
		}
	}
}

func TestSACA3DParallelMatchesSequential(t *testing.T) {
	const size = 12
	a, _ := array.NewImage3D(size, size, size)
	b, _ := array.NewImage3D(size, size, size)

	const sigma = 2.5
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				d := float64((x-6)*(x-6) + (y-6)*(y-6) + (z-6)*(z-6))
				v := 50.0 * math.Exp(-d/(2*sigma*sigma))
				a.Set(x, y, z, v)
				b.Set(x, y, z, v*0.8)
			}
		}
	}

	seq, err := SACA3D(a, b, 0.5, 0.5, false)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := SACA3D(a, b, 0.5, 0.5, true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for i := range seq.Data {
		s, p := seq.Data[i], par.Data[i]
		if math.IsNaN(s) && math.IsNaN(p) {
			continue
		}
		if s != p {
			t.Fatalf("score[%d]: sequential %v, parallel %v", i, s, p)
		}
	}
}

func TestSACA3DColocalizedCenter(t *testing.T) {
	const size = 12
	a, _ := array.NewImage3D(size, size, size)
	b, _ := array.NewImage3D(size, size, size)

	const sigma = 2.5
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				d := float64((x-6)*(x-6) + (y-6)*(y-6) + (z-6)*(z-6))
				v := 50.0 * math.Exp(-d/(2*sigma*sigma))
				a.Set(x, y, z, v)
				b.Set(x, y, z, v)
			}
		}
	}

	zs, err := SACA3D(a, b, 0.5, 0.5, false)
	if err != nil {
		t.Fatalf("SACA3D: %v", err)
	}
	if center := zs.At(6, 6, 6); math.IsNaN(center) || center <= 0 {
		t.Errorf("z at volume center = %v, want positive", center)
	}
}
