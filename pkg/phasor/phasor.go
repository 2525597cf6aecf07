// Package phasor computes phasor coordinates of time-resolved fluorescence
// decays: each pixel's decay is projected onto the first harmonics of the
// acquisition period, mapping lifetime information onto the universal
// semicircle.
package phasor

import (
	"errors"
	"fmt"
	"math"

	"imgal/internal/parallel"
	"imgal/pkg/array"
	"imgal/pkg/integration"
)

// ErrInvalidParameter indicates a non-positive period or harmonic.
var ErrInvalidParameter = errors.New("invalid phasor parameter")

// Omega returns the angular frequency of an acquisition period.
func Omega(period float64) float64 {
	return 2.0 * math.Pi / period
}

// GSImage computes the real (G) and imaginary (S) phasor coordinates of a
// time-resolved image. The volume's depth axis is the time axis: each (x, y)
// lane holds one decay of Depth samples spread evenly over the period. The
// coordinates are the cosine and sine projections at the given harmonic of
// the fundamental frequency, normalized by the lane's integral:
//
//	G = Σ I(t)·cos(hωt)·Δt / Σ I(t)·Δt
//	S = Σ I(t)·sin(hωt)·Δt / Σ I(t)·Δt
//
// A lane with zero integral yields NaN coordinates. An optional mask limits
// the computation: pixels where the mask is false get zero coordinates.
//
// Parameters:
//   - data: The time-resolved image, time along the depth axis
//   - period: Acquisition period covered by the Depth samples
//   - harmonic: Harmonic number, 1 for the fundamental
//   - mask: Optional pixel mask, same width and height as data; nil means
//     all pixels
//   - parallelMode: Process pixel rows on all cores when true
//
// Returns:
//   - The G image and the S image, both width x height
//   - An error for a non-positive period or harmonic, or a mask of the
//     wrong shape
func GSImage(data *array.Image3D, period, harmonic float64, mask *array.Mask2D, parallelMode bool) (*array.Image2D, *array.Image2D, error) {
	if period <= 0 {
		return nil, nil, fmt.Errorf("%w: period %v", ErrInvalidParameter, period)
	}
	if harmonic <= 0 {
		return nil, nil, fmt.Errorf("%w: harmonic %v", ErrInvalidParameter, harmonic)
	}
	if mask != nil && (mask.Width != data.Width || mask.Height != data.Height) {
		return nil, nil, fmt.Errorf("%w: mask %dx%d over %dx%d image",
			array.ErrShapeMismatch, mask.Width, mask.Height, data.Width, data.Height)
	}

	g, err := array.NewImage2D(data.Width, data.Height)
	if err != nil {
		return nil, nil, err
	}
	s, err := array.NewImage2D(data.Width, data.Height)
	if err != nil {
		return nil, nil, err
	}

	deltaT := period / float64(data.Depth)
	hOmega := harmonic * Omega(period)

	// The trig factors depend only on the time bin; precompute them once.
	cosines := make([]float64, data.Depth)
	sines := make([]float64, data.Depth)
	for i := range cosines {
		t := (float64(i) + 0.5) * deltaT
		cosines[i] = math.Cos(hOmega * t)
		sines[i] = math.Sin(hOmega * t)
	}

	planeSize := data.Width * data.Height
	workers := parallel.Workers(parallelMode)
	parallel.For(data.Height, workers, func(yLo, yHi int) {
		for y := yLo; y < yHi; y++ {
			for x := 0; x < data.Width; x++ {
				i := y*data.Width + x
				if mask != nil && !mask.Data[i] {
					continue
				}

				integral, gSum, sSum := 0.0, 0.0, 0.0
				for z := 0; z < data.Depth; z++ {
					v := data.Data[z*planeSize+i]
					integral += v
					gSum += v * cosines[z]
					sSum += v * sines[z]
				}

				g.Data[i] = gSum / integral
				s.Data[i] = sSum / integral
			}
		}
	})

	return g, s, nil
}

// GS computes the phasor coordinates of a single decay curve sampled evenly
// over the period. A curve with zero integral yields NaN coordinates.
func GS(decay []float64, period, harmonic float64) (float64, float64) {
	deltaT := period / float64(len(decay))
	hOmega := harmonic * Omega(period)

	gSum, sSum := 0.0, 0.0
	for i, v := range decay {
		t := (float64(i) + 0.5) * deltaT
		gSum += v * math.Cos(hOmega*t)
		sSum += v * math.Sin(hOmega*t)
	}
	integral := integration.Midpoint(decay, deltaT)
	return gSum * deltaT / integral, sSum * deltaT / integral
}
