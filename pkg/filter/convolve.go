// Package filter implements frequency-domain convolution and deconvolution
// for 1D signals such as decay curves and instrument response functions.
package filter

import (
	"math/bits"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTConvolve1D convolves two signals in the frequency domain. Both inputs
// are zero-padded to the next power of two covering the full linear
// convolution; the result is trimmed back to len(a), matching the causal
// convention used by the decay simulators.
//
// Parameters:
//   - a: The signal to convolve, e.g. an ideal decay curve
//   - b: The kernel, e.g. an instrument response function
//
// Returns:
//   - The convolved signal of length len(a); nil for empty input
func FFTConvolve1D(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	fftSize := nextPowerOfTwo(len(a) + len(b) - 1)
	fft := fourier.NewCmplxFFT(fftSize)
	aCoef := fft.Coefficients(nil, complexBuffer(a, fftSize))
	bCoef := fft.Coefficients(nil, complexBuffer(b, fftSize))

	for i := range aCoef {
		aCoef[i] *= bCoef[i]
	}
	seq := fft.Sequence(nil, aCoef)

	// The gonum transform pair is unnormalized.
	scale := 1.0 / float64(fftSize)
	result := make([]float64, len(a))
	for i := range result {
		result[i] = real(seq[i]) * scale
	}
	return result
}

// FFTDeconvolve1D removes a kernel from a signal by spectral division.
// Frequency components of the signal with squared magnitude at or below
// epsilon are zeroed instead of divided, suppressing noise blowup. An
// epsilon of 0 or less selects the default 1e-8.
func FFTDeconvolve1D(a, b []float64, epsilon float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	if epsilon <= 0 {
		epsilon = 1e-8
	}

	fftSize := nextPowerOfTwo(len(a) + len(b) - 1)
	fft := fourier.NewCmplxFFT(fftSize)
	aCoef := fft.Coefficients(nil, complexBuffer(a, fftSize))
	bCoef := fft.Coefficients(nil, complexBuffer(b, fftSize))

	for i := range aCoef {
		v := aCoef[i]
		if real(v)*real(v)+imag(v)*imag(v) > epsilon {
			aCoef[i] = v / bCoef[i]
		} else {
			aCoef[i] = 0
		}
	}
	seq := fft.Sequence(nil, aCoef)

	scale := 1.0 / float64(fftSize)
	result := make([]float64, len(a))
	for i := range result {
		result[i] = real(seq[i]) * scale
	}
	return result
}

func complexBuffer(data []float64, size int) []complex128 {
	buf := make([]complex128, size)
	for i, v := range data {
		buf[i] = complex(v, 0)
	}
	return buf
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
