package simulation

import (
	"errors"
	"fmt"
	"math"

	"imgal/pkg/distribution"
	"imgal/pkg/filter"
)

// ErrBadDecaySpec indicates inconsistent decay parameters: mismatched tau
// and fraction counts, fractions that do not sum to one, or non-positive
// lifetimes.
var ErrBadDecaySpec = errors.New("invalid decay specification")

// IdealExponentialDecay1D samples a multi-component exponential fluorescence
// decay over one period and scales it to a total photon count. Component j
// contributes fractions[j]·exp(−t/taus[j]); the curve is then normalized so
// its samples sum to totalCounts.
//
// Parameters:
//   - taus: Component lifetimes, positive, same time unit as period
//   - fractions: Component amplitude fractions, must sum to 1 within 1e-9
//   - totalCounts: Target sum of the sampled curve
//   - samples: Number of time bins over the period
//   - period: Acquisition period covered by the samples
//
// Returns:
//   - The sampled decay of length samples
//   - An error for an inconsistent specification
func IdealExponentialDecay1D(taus, fractions []float64, totalCounts float64, samples int, period float64) ([]float64, error) {
	if len(taus) == 0 || len(taus) != len(fractions) {
		return nil, fmt.Errorf("%w: %d lifetimes, %d fractions", ErrBadDecaySpec, len(taus), len(fractions))
	}
	if samples < 1 || period <= 0 {
		return nil, fmt.Errorf("%w: %d samples over period %v", ErrBadDecaySpec, samples, period)
	}

	fracSum := 0.0
	for _, f := range fractions {
		fracSum += f
	}
	if math.Abs(fracSum-1.0) > 1e-9 {
		return nil, fmt.Errorf("%w: fractions sum to %v, want 1", ErrBadDecaySpec, fracSum)
	}
	for i, tau := range taus {
		if tau <= 0 {
			return nil, fmt.Errorf("%w: lifetime %d is %v, want positive", ErrBadDecaySpec, i, tau)
		}
	}

	deltaT := period / float64(samples)
	curve := make([]float64, samples)
	sum := 0.0
	for i := range curve {
		t := float64(i) * deltaT
		v := 0.0
		for j, tau := range taus {
			v += fractions[j] * math.Exp(-t/tau)
		}
		curve[i] = v
		sum += v
	}

	scale := totalCounts / sum
	for i := range curve {
		curve[i] *= scale
	}
	return curve, nil
}

// GaussianIRF1D samples a normalized Gaussian instrument response function
// over the acquisition period: a discrete kernel of the given width centered
// at the given time, summing to 1.
func GaussianIRF1D(sigma, center float64, samples int, period float64) []float64 {
	return distribution.NormalizedGaussian(sigma, samples, period, center, false)
}

// GaussianExponentialDecay1D produces a realistic decay curve: the ideal
// multi-exponential decay blurred by a Gaussian instrument response. The
// convolution runs in the frequency domain and the result keeps the length
// and total counts of the ideal curve.
func GaussianExponentialDecay1D(taus, fractions []float64, totalCounts float64, samples int, period, irfSigma, irfCenter float64) ([]float64, error) {
	ideal, err := IdealExponentialDecay1D(taus, fractions, totalCounts, samples, period)
	if err != nil {
		return nil, err
	}
	irf := GaussianIRF1D(irfSigma, irfCenter, samples, period)

	blurred := filter.FFTConvolve1D(ideal, irf)

	// Trimming the circular convolution can shave a little mass off the
	// tail; rescale back to the requested counts.
	sum := 0.0
	for _, v := range blurred {
		sum += v
	}
	if sum > 0 {
		scale := totalCounts / sum
		for i := range blurred {
			blurred[i] *= scale
		}
	}
	return blurred, nil
}
