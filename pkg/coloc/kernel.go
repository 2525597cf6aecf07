// Package coloc implements colocalization analysis between two co-registered
// image channels: Spatially Adaptive Colocalization Analysis (SACA) with its
// propagation-separation kernel, Bonferroni-corrected significance masking of
// the resulting z-score fields, and ROI-wise Pearson colocalization.
package coloc

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"imgal/pkg/stats"
)

// ErrInvalidKernelParams indicates an adaptive kernel configuration that
// cannot produce a growth schedule.
var ErrInvalidKernelParams = errors.New("invalid kernel parameters")

// KernelParams configures the propagation-separation kernel of SACA. The
// exact growth schedule, falloff and stopping tolerance are statistical
// tuning knobs rather than load-bearing invariants, so they are exposed
// here instead of being hard-coded.
type KernelParams struct {
	// InitialRadius is the radius of the first neighborhood, in pixels.
	InitialRadius float64

	// RadiusStep is the multiplicative growth factor applied to the radius
	// on every propagation iteration. Must be greater than 1.
	RadiusStep float64

	// MaxRadius bounds the kernel growth; when reached, the full-radius
	// neighborhood is used.
	MaxRadius float64

	// SeparationLambda scales the separation test: growth stops once the
	// local Tau estimate moves by more than SeparationLambda standard
	// deviations of the previous estimate between consecutive radii.
	SeparationLambda float64
}

// DefaultKernelParams2D returns the kernel configuration used for 2D images.
func DefaultKernelParams2D() KernelParams {
	return KernelParams{
		InitialRadius:    2.0,
		RadiusStep:       1.15,
		MaxRadius:        8.0,
		SeparationLambda: 1.5,
	}
}

// DefaultKernelParams3D returns the kernel configuration used for 3D
// volumes. The maximum radius is smaller than in 2D because a spherical
// neighborhood grows cubically.
func DefaultKernelParams3D() KernelParams {
	return KernelParams{
		InitialRadius:    2.0,
		RadiusStep:       1.15,
		MaxRadius:        4.0,
		SeparationLambda: 1.5,
	}
}

func (p KernelParams) validate() error {
	if p.InitialRadius < 1.0 {
		return fmt.Errorf("%w: initial radius %v is below 1", ErrInvalidKernelParams, p.InitialRadius)
	}
	if p.RadiusStep <= 1.0 {
		return fmt.Errorf("%w: radius step %v must be greater than 1", ErrInvalidKernelParams, p.RadiusStep)
	}
	if p.MaxRadius < p.InitialRadius {
		return fmt.Errorf("%w: max radius %v is below initial radius %v",
			ErrInvalidKernelParams, p.MaxRadius, p.InitialRadius)
	}
	if p.SeparationLambda <= 0 {
		return fmt.Errorf("%w: separation lambda %v must be positive", ErrInvalidKernelParams, p.SeparationLambda)
	}
	return nil
}

// radiusSchedule expands the kernel parameters into the increasing sequence
// of radii visited by the propagation loop, ending exactly at MaxRadius.
func (p KernelParams) radiusSchedule() []float64 {
	var radii []float64
	for r := p.InitialRadius; r < p.MaxRadius; r *= p.RadiusStep {
		radii = append(radii, r)
	}
	if len(radii) == 0 || radii[len(radii)-1] < p.MaxRadius {
		radii = append(radii, p.MaxRadius)
	}
	return radii
}

// kernelOffset is one integer displacement inside the maximal kernel,
// annotated with its Euclidean distance from the center.
type kernelOffset struct {
	dx, dy, dz int
	dist       float64
}

// kernelOffsets enumerates every integer offset within maxRadius of the
// center, as a circle (depth false) or a sphere (depth true), sorted by
// distance so a growing radius consumes a prefix of the slice. The stable
// sort keeps scan order among equidistant offsets, which pins down the
// floating-point summation order for a given configuration.
func kernelOffsets(maxRadius float64, depth bool) []kernelOffset {
	r := int(math.Floor(maxRadius))
	zLo, zHi := 0, 0
	if depth {
		zLo, zHi = -r, r
	}

	var offsets []kernelOffset
	for dz := zLo; dz <= zHi; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				d := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
				if d <= maxRadius {
					offsets = append(offsets, kernelOffset{dx: dx, dy: dy, dz: dz, dist: d})
				}
			}
		}
	}
	sort.SliceStable(offsets, func(i, j int) bool { return offsets[i].dist < offsets[j].dist })
	return offsets
}

// neighborhood is the per-worker scratch of the adaptive engine: the sample
// pairs gathered so far, their distances, their threshold gates, and the
// weight buffer recomputed for the current radius. Buffers are reused
// across all pixels a worker processes.
type neighborhood struct {
	valsA   []float64
	valsB   []float64
	dists   []float64
	gated   []bool
	weights []float64

	tau *stats.TauBWorkspace
}

func newNeighborhood(capacity int) *neighborhood {
	return &neighborhood{
		valsA:   make([]float64, 0, capacity),
		valsB:   make([]float64, 0, capacity),
		dists:   make([]float64, 0, capacity),
		gated:   make([]bool, 0, capacity),
		weights: make([]float64, capacity),
		tau:     stats.NewTauBWorkspace(capacity),
	}
}

func (nb *neighborhood) reset() {
	nb.valsA = nb.valsA[:0]
	nb.valsB = nb.valsB[:0]
	nb.dists = nb.dists[:0]
	nb.gated = nb.gated[:0]
}

// add records one in-bounds sample pair. Samples below either channel's
// threshold keep their spatial position but are permanently gated to zero
// weight.
func (nb *neighborhood) add(va, vb, dist float64, aboveThresholds bool) {
	nb.valsA = append(nb.valsA, va)
	nb.valsB = append(nb.valsB, vb)
	nb.dists = append(nb.dists, dist)
	nb.gated = append(nb.gated, aboveThresholds)
}

// applyFalloff recomputes the spatial weights for the current radius using
// a triangular falloff, w = 1 − d/(r+1): maximal at the center, strictly
// positive everywhere inside the kernel, decreasing with distance. Gated
// samples get weight zero.
func (nb *neighborhood) applyFalloff(radius float64) []float64 {
	n := len(nb.dists)
	w := nb.weights[:n]
	for i, d := range nb.dists {
		if nb.gated[i] {
			w[i] = 1.0 - d/(radius+1.0)
		} else {
			w[i] = 0.0
		}
	}
	return w
}

// tauVariance is the asymptotic null variance of Kendall's Tau for an
// effective sample size n: 2(2n+5) / (9n(n−1)). Neighborhoods with less
// than two effective samples carry no pair information and get infinite
// variance, which drives their z-score to zero.
func tauVariance(neff float64) float64 {
	if neff < 2.0 {
		return math.Inf(1)
	}
	return 2.0 * (2.0*neff + 5.0) / (9.0 * neff * (neff - 1.0))
}

// score runs the propagation-separation loop for one center pixel. gather
// appends the in-bounds samples whose distance lies in (prev, radius] to
// the neighborhood; the engine calls it with the radius schedule in
// increasing order so each sample is gathered exactly once.
//
// The local Tau estimate propagates from one radius to the next while it
// stays within the separation tolerance of the previous estimate; the first
// violation stops growth and keeps the previous estimate, otherwise the
// full-radius neighborhood wins. The returned z-score is the final Tau
// scaled by its asymptotic standard deviation.
func (nb *neighborhood) score(radii []float64, lambda float64, gather func(prev, radius float64)) float64 {
	nb.reset()

	curTau := 0.0
	curVar := math.Inf(1)
	have := false

	// Start below zero so the center sample (distance 0) falls inside the
	// first gather interval.
	prev := -1.0
	for _, radius := range radii {
		gather(prev, radius)
		prev = radius

		if len(nb.valsA) < 2 {
			continue
		}
		weights := nb.applyFalloff(radius)
		tau := nb.tau.Correlate(nb.valsA, nb.valsB, weights)
		neff := stats.EffectiveSampleSize(weights)
		variance := tauVariance(neff)

		// Separation test: a jump beyond lambda standard deviations of the
		// previous estimate means the larger window mixes statistically
		// distinct regions; keep the previous estimate.
		if have && math.Abs(tau-curTau) > lambda*math.Sqrt(curVar) {
			break
		}
		curTau, curVar = tau, variance
		have = true
	}

	if !have {
		return 0.0
	}
	// NaN Tau (fully degenerate neighborhood) propagates to a NaN z-score;
	// infinite variance (no effective samples) collapses to zero.
	return curTau / math.Sqrt(curVar)
}
