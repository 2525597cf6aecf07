// Package simulation generates the synthetic images and decay curves used to
// exercise and validate the analysis pipeline: metaball blob fields over 2D
// and 3D grids, randomized blob layouts with a minimum-separation guarantee,
// and fluorescence decay fixtures.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"imgal/internal/parallel"
	"imgal/pkg/array"
)

// ErrBadBlobSpec indicates blob parameter slices whose lengths do not match
// the number of centers, or centers of the wrong dimensionality.
var ErrBadBlobSpec = errors.New("invalid blob specification")

// ErrPlacementFailed indicates that RandomCenters could not place the
// requested number of centers under the separation constraint.
var ErrPlacementFailed = errors.New("center placement failed")

// checkBlobSpec validates a centers matrix of n rows by dims columns against
// the per-blob parameter slices.
func checkBlobSpec(centers *mat.Dense, dims int, radii, intensities, falloffs []float64) (int, error) {
	rows, cols := centers.Dims()
	if cols != dims {
		return 0, fmt.Errorf("%w: centers have %d coordinates, want %d", ErrBadBlobSpec, cols, dims)
	}
	if len(radii) != rows || len(intensities) != rows || len(falloffs) != rows {
		return 0, fmt.Errorf("%w: %d centers but %d radii, %d intensities, %d falloffs",
			ErrBadBlobSpec, rows, len(radii), len(intensities), len(falloffs))
	}
	for i, r := range radii {
		if r <= 0 {
			return 0, fmt.Errorf("%w: radius %d is %v, want positive", ErrBadBlobSpec, i, r)
		}
	}
	return rows, nil
}

// GaussianMetaballs2D renders a field of additive Gaussian blobs onto a
// width x height image. Each pixel holds the background level plus, for
// every blob, intensity·exp(−d²/(falloff·r²)) where d is the distance from
// the pixel to the blob center.
//
// Parameters:
//   - centers: One blob center per row, columns (x, y)
//   - radii, intensities, falloffs: Per-blob shape parameters, one entry
//     per center; radii must be positive
//   - background: Constant level added everywhere
//   - width, height: Output dimensions in pixels
//   - parallelMode: Render pixel rows on all cores when true
//
// Returns:
//   - The rendered image
//   - An error if the blob specification is inconsistent
func GaussianMetaballs2D(centers *mat.Dense, radii, intensities, falloffs []float64, background float64, width, height int, parallelMode bool) (*array.Image2D, error) {
	n, err := checkBlobSpec(centers, 2, radii, intensities, falloffs)
	if err != nil {
		return nil, err
	}
	out, err := array.NewImage2D(width, height)
	if err != nil {
		return nil, err
	}

	workers := parallel.Workers(parallelMode)
	parallel.For(height, workers, func(yLo, yHi int) {
		for y := yLo; y < yHi; y++ {
			for x := 0; x < width; x++ {
				v := background
				for b := 0; b < n; b++ {
					dx := float64(x) - centers.At(b, 0)
					dy := float64(y) - centers.At(b, 1)
					v += intensities[b] * math.Exp(-(dx*dx+dy*dy)/(falloffs[b]*radii[b]*radii[b]))
				}
				out.Data[y*width+x] = v
			}
		}
	})
	return out, nil
}

// GaussianMetaballs3D is the volumetric form of GaussianMetaballs2D;
// centers carry (x, y, z) columns.
func GaussianMetaballs3D(centers *mat.Dense, radii, intensities, falloffs []float64, background float64, width, height, depth int, parallelMode bool) (*array.Image3D, error) {
	n, err := checkBlobSpec(centers, 3, radii, intensities, falloffs)
	if err != nil {
		return nil, err
	}
	out, err := array.NewImage3D(width, height, depth)
	if err != nil {
		return nil, err
	}

	planeSize := width * height
	workers := parallel.Workers(parallelMode)
	parallel.For(depth, workers, func(zLo, zHi int) {
		for z := zLo; z < zHi; z++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					v := background
					for b := 0; b < n; b++ {
						dx := float64(x) - centers.At(b, 0)
						dy := float64(y) - centers.At(b, 1)
						dz := float64(z) - centers.At(b, 2)
						v += intensities[b] * math.Exp(-(dx*dx+dy*dy+dz*dz)/(falloffs[b]*radii[b]*radii[b]))
					}
					out.Data[z*planeSize+y*width+x] = v
				}
			}
		}
	})
	return out, nil
}

// LogisticMetaballs2D renders blobs with a logistic edge profile, giving a
// plateau of roughly the blob intensity inside the radius and a smooth drop
// to the background outside it. Blobs do not add: each pixel takes the
// maximum of the background and every blob's contribution
// intensity / (1 + exp((d − r)/falloff)).
func LogisticMetaballs2D(centers *mat.Dense, radii, intensities, falloffs []float64, background float64, width, height int, parallelMode bool) (*array.Image2D, error) {
	n, err := checkBlobSpec(centers, 2, radii, intensities, falloffs)
	if err != nil {
		return nil, err
	}
	out, err := array.NewImage2D(width, height)
	if err != nil {
		return nil, err
	}

	workers := parallel.Workers(parallelMode)
	parallel.For(height, workers, func(yLo, yHi int) {
		for y := yLo; y < yHi; y++ {
			for x := 0; x < width; x++ {
				v := background
				for b := 0; b < n; b++ {
					dx := float64(x) - centers.At(b, 0)
					dy := float64(y) - centers.At(b, 1)
					d := math.Sqrt(dx*dx + dy*dy)
					c := intensities[b] / (1.0 + math.Exp((d-radii[b])/math.Max(falloffs[b], 1e-12)))
					if c > v {
						v = c
					}
				}
				out.Data[y*width+x] = v
			}
		}
	})
	return out, nil
}

// LogisticMetaballs3D is the volumetric form of LogisticMetaballs2D.
func LogisticMetaballs3D(centers *mat.Dense, radii, intensities, falloffs []float64, background float64, width, height, depth int, parallelMode bool) (*array.Image3D, error) {
	n, err := checkBlobSpec(centers, 3, radii, intensities, falloffs)
	if err != nil {
		return nil, err
	}
	out, err := array.NewImage3D(width, height, depth)
	if err != nil {
		return nil, err
	}

	planeSize := width * height
	workers := parallel.Workers(parallelMode)
	parallel.For(depth, workers, func(zLo, zHi int) {
		for z := zLo; z < zHi; z++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					v := background
					for b := 0; b < n; b++ {
						dx := float64(x) - centers.At(b, 0)
						dy := float64(y) - centers.At(b, 1)
						dz := float64(z) - centers.At(b, 2)
						d := math.Sqrt(dx*dx + dy*dy + dz*dz)
						c := intensities[b] / (1.0 + math.Exp((d-radii[b])/math.Max(falloffs[b], 1e-12)))
						if c > v {
							v = c
						}
					}
					out.Data[z*planeSize+y*width+x] = v
				}
			}
		}
	})
	return out, nil
}

// RandomCenters draws n centers uniformly inside the box spanned by dims
// (one extent per dimension), rejecting any candidate closer than
// minSeparation to an already accepted center. The draw is deterministic
// for a given source.
//
// Parameters:
//   - n: Number of centers to place
//   - dims: Box extents, one per coordinate
//   - minSeparation: Minimum pairwise Euclidean distance
//   - rng: Random source
//
// Returns:
//   - An n x len(dims) matrix of centers, one per row
//   - ErrPlacementFailed if the constraint cannot be met within the
//     attempt budget
func RandomCenters(n int, dims []float64, minSeparation float64, rng *rand.Rand) (*mat.Dense, error) {
	if n <= 0 || len(dims) == 0 {
		return nil, fmt.Errorf("%w: %d centers in %d dimensions", ErrBadBlobSpec, n, len(dims))
	}

	d := len(dims)
	centers := mat.NewDense(n, d, nil)
	minSq := minSeparation * minSeparation

	const maxAttempts = 10000
	placed := 0
	for attempts := 0; placed < n; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: placed %d of %d centers after %d attempts",
				ErrPlacementFailed, placed, n, maxAttempts)
		}

		candidate := make([]float64, d)
		for k := range candidate {
			candidate[k] = rng.Float64() * dims[k]
		}

		ok := true
		for i := 0; i < placed; i++ {
			distSq := 0.0
			for k := 0; k < d; k++ {
				diff := candidate[k] - centers.At(i, k)
				distSq += diff * diff
			}
			if distSq < minSq {
				ok = false
				break
			}
		}
		if ok {
			centers.SetRow(placed, candidate)
			placed++
		}
	}
	return centers, nil
}
