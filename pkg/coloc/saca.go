package coloc

import (
	"fmt"

	"imgal/internal/parallel"
	"imgal/pkg/array"
)

// SACA2D runs spatially adaptive colocalization analysis on two co-registered
// 2D channels with the default 2D kernel. See SACA2DWithParams.
func SACA2D(a, b *array.Image2D, thresholdA, thresholdB float64, parallelMode bool) (*array.Image2D, error) {
	return SACA2DWithParams(a, b, thresholdA, thresholdB, DefaultKernelParams2D(), parallelMode)
}

// SACA2DWithParams computes a per-pixel colocalization z-score field for two
// co-registered 2D channels. Each pixel gets an adaptively grown circular
// neighborhood; the weighted Kendall Tau of the channel values over that
// neighborhood, scaled by its asymptotic standard deviation, is the pixel's
// score. Positive scores mark colocalization, negative scores
// anti-colocalization, and scores near zero spatial independence.
//
// Samples where either channel falls below its threshold keep their position
// in the neighborhood but contribute zero weight, so background never feeds
// the correlation. Neighborhoods clipped at the image border simply use the
// in-bounds samples.
//
// Parameters:
//   - a, b: The two channels, identical dimensions
//   - thresholdA, thresholdB: Background cutoffs; samples below either get
//     zero weight
//   - params: Kernel growth and stopping configuration
//   - parallelMode: Process pixel rows on all cores when true
//
// Returns:
//   - The z-score image, same shape as the inputs
//   - An error if the shapes differ or the kernel parameters are invalid
//
// Reference: https://doi.org/10.1109/TIP.2019.2909194
func SACA2DWithParams(a, b *array.Image2D, thresholdA, thresholdB float64, params KernelParams, parallelMode bool) (*array.Image2D, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", array.ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	out, err := array.NewImage2D(a.Width, a.Height)
	if err != nil {
		return nil, err
	}

	radii := params.radiusSchedule()
	offsets := kernelOffsets(params.MaxRadius, false)
	workers := parallel.Workers(parallelMode)

	parallel.For(a.Height, workers, func(yLo, yHi int) {
		nb := newNeighborhood(len(offsets))

		for y := yLo; y < yHi; y++ {
			for x := 0; x < a.Width; x++ {
				out.Data[y*a.Width+x] = nb.score(radii, params.SeparationLambda, func(prev, radius float64) {
					gatherDisk2D(nb, a, b, thresholdA, thresholdB, x, y, offsets, prev, radius)
				})
			}
		}
	})

	return out, nil
}

// SACA3D runs spatially adaptive colocalization analysis on two co-registered
// volumes with the default 3D kernel. See SACA3DWithParams.
func SACA3D(a, b *array.Image3D, thresholdA, thresholdB float64, parallelMode bool) (*array.Image3D, error) {
	return SACA3DWithParams(a, b, thresholdA, thresholdB, DefaultKernelParams3D(), parallelMode)
}

// SACA3DWithParams is the volumetric form of SACA2DWithParams: spherical
// neighborhoods instead of circular ones, otherwise identical semantics.
func SACA3DWithParams(a, b *array.Image3D, thresholdA, thresholdB float64, params KernelParams, parallelMode bool) (*array.Image3D, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", array.ErrShapeMismatch,
			a.Width, a.Height, a.Depth, b.Width, b.Height, b.Depth)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	out, err := array.NewImage3D(a.Width, a.Height, a.Depth)
	if err != nil {
		return nil, err
	}

	radii := params.radiusSchedule()
	offsets := kernelOffsets(params.MaxRadius, true)
	workers := parallel.Workers(parallelMode)

	planeSize := a.Width * a.Height
	parallel.For(a.Depth, workers, func(zLo, zHi int) {
		nb := newNeighborhood(len(offsets))

		for z := zLo; z < zHi; z++ {
			for y := 0; y < a.Height; y++ {
				for x := 0; x < a.Width; x++ {
					out.Data[z*planeSize+y*a.Width+x] = nb.score(radii, params.SeparationLambda, func(prev, radius float64) {
						gatherBall3D(nb, a, b, thresholdA, thresholdB, x, y, z, offsets, prev, radius)
					})
				}
			}
		}
	})

	return out, nil
}

// gatherDisk2D appends to nb the in-bounds samples around (x, y) whose
// kernel distance lies in (prev, radius]. The offsets slice is sorted by
// distance, so the loop can stop at the first offset beyond radius.
func gatherDisk2D(nb *neighborhood, a, b *array.Image2D, thresholdA, thresholdB float64, x, y int, offsets []kernelOffset, prev, radius float64) {
	for _, off := range offsets {
		if off.dist > radius {
			break
		}
		if off.dist <= prev {
			continue
		}
		px, py := x+off.dx, y+off.dy
		if px < 0 || px >= a.Width || py < 0 || py >= a.Height {
			continue
		}
		i := py*a.Width + px
		va, vb := a.Data[i], b.Data[i]
		nb.add(va, vb, off.dist, va >= thresholdA && vb >= thresholdB)
	}
}

// gatherBall3D is the volumetric counterpart of gatherDisk2D.
func gatherBall3D(nb *neighborhood, a, b *array.Image3D, thresholdA, thresholdB float64, x, y, z int, offsets []kernelOffset, prev, radius float64) {
	planeSize := a.Width * a.Height
	for _, off := range offsets {
		if off.dist > radius {
			break
		}
		if off.dist <= prev {
			continue
		}
		px, py, pz := x+off.dx, y+off.dy, z+off.dz
		if px < 0 || px >= a.Width || py < 0 || py >= a.Height || pz < 0 || pz >= a.Depth {
			continue
		}
		i := pz*planeSize + py*a.Width + px
		va, vb := a.Data[i], b.Data[i]
		nb.add(va, vb, off.dist, va >= thresholdA && vb >= thresholdB)
	}
}

// Positive reports how many scores in a z-score field exceed zero, a quick
// summary of how much of the image leans colocalized. NaN scores do not
// count.
func Positive(scores []float64) int {
	n := 0
	for _, z := range scores {
		if z > 0 {
			n++
		}
	}
	return n
}
