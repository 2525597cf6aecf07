package stats

import (
	"fmt"
	"math"
	"sort"

	"imgal/pkg/array"
)

// WeightedKendallTauB computes the weighted Kendall Tau-b rank correlation
// coefficient between two datasets, where each observation pair contributes
// with its own weight:
//
//	τ_b = (C − D) / √[(n₀ − n₁)(n₀ − n₂)]
//
// with n₀ = (Σw)² − Σw² the total weighted pair mass, n₁ and n₂ the weighted
// tie corrections for a and b, and C − D the net concordance derived from the
// weighted inversion count of b's ranks re-ordered by a's ranks.
//
// Degenerate inputs are absorbed rather than reported as errors: fewer than
// two observations yield 0. A zero or NaN denominator yields 0 when only one
// variable is constant, and NaN when both variables are completely tied and
// no ordering information exists at all. The result is clamped to [-1, 1]
// against floating-point overshoot.
//
// Parameters:
//   - a, b: The two datasets to correlate, same length
//   - weights: Non-negative per-observation weights, same length
//
// Returns:
//   - The weighted Tau-b coefficient in [-1, 1], or NaN for fully
//     degenerate input
//   - An error if the three slices do not share one length
//
// Reference: https://doi.org/10.1109/TIP.2019.2909194
func WeightedKendallTauB[T array.Real](a, b []T, weights []float64) (float64, error) {
	dl := len(a)
	if dl != len(b) || dl != len(weights) {
		return 0, fmt.Errorf("%w: a has %d elements, b has %d, weights has %d",
			ErrMismatchedLengths, dl, len(b), len(weights))
	}
	ws := NewTauBWorkspace(dl)
	return ws.Correlate(array.Float64Slice(a), array.Float64Slice(b), weights), nil
}

// TauBWorkspace holds the transient buffers of a weighted Kendall Tau-b
// computation so tight per-neighborhood loops can reuse them instead of
// allocating for every pixel. A workspace is not safe for concurrent use;
// give each worker its own.
type TauBWorkspace struct {
	order   []int
	indices []int
	aRanks  []float64
	bRanks  []float64
	bSorted []float64
	wSorted []float64

	sortBuf   []float64
	weightBuf []float64
	cumBuf    []float64
}

// NewTauBWorkspace creates a workspace pre-sized for inputs of up to the
// given length; larger inputs grow the buffers on demand.
func NewTauBWorkspace(capacity int) *TauBWorkspace {
	ws := &TauBWorkspace{}
	ws.grow(capacity)
	return ws
}

func (ws *TauBWorkspace) grow(n int) {
	if cap(ws.order) >= n {
		return
	}
	ws.order = make([]int, n)
	ws.indices = make([]int, n)
	ws.aRanks = make([]float64, n)
	ws.bRanks = make([]float64, n)
	ws.bSorted = make([]float64, n)
	ws.wSorted = make([]float64, n)
	ws.sortBuf = make([]float64, n)
	ws.weightBuf = make([]float64, n)
	ws.cumBuf = make([]float64, n)
}

// Correlate computes the weighted Kendall Tau-b coefficient of a against b.
// All three slices must share one length; this is the caller's contract,
// unlike the checked package-level function. Inputs are not modified.
func (ws *TauBWorkspace) Correlate(a, b, weights []float64) float64 {
	dl := len(a)
	if dl < 2 {
		return 0
	}
	ws.grow(dl)

	aRanks := ws.aRanks[:dl]
	bRanks := ws.bRanks[:dl]
	aTieCorr := ws.rankWithWeights(a, weights, aRanks)
	bTieCorr := ws.rankWithWeights(b, weights, bRanks)

	// Order observations by a's rank with b's rank as tie-breaker: tied
	// a-groups arrive in b-order, so only strictly discordant pairs produce
	// inversions. This also makes the result independent of the input
	// traversal order.
	order := ws.order[:dl]
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		oi, oj := order[i], order[j]
		if aRanks[oi] != aRanks[oj] {
			return aRanks[oi] < aRanks[oj]
		}
		return bRanks[oi] < bRanks[oj]
	})

	bSorted := ws.bSorted[:dl]
	wSorted := ws.wSorted[:dl]
	for i, idx := range order {
		bSorted[i] = bRanks[idx]
		wSorted[i] = weights[idx]
	}

	// Pairs tied in both variables leave the numerator entirely; their
	// weighted mass is accumulated over the contiguous runs of equal
	// (a-rank, b-rank) pairs in sorted order. Factor of 2 for symmetric
	// pairs, matching the per-variable corrections.
	jointTieCorr := 0.0
	for i := 0; i < dl; {
		j := i + 1
		for j < dl && aRanks[order[j]] == aRanks[order[i]] && bSorted[j] == bSorted[i] {
			j++
		}
		if j-i > 1 {
			groupCorr := 0.0
			for k := i; k < j; k++ {
				for l := k + 1; l < j; l++ {
					groupCorr += wSorted[k] * wSorted[l]
				}
			}
			jointTieCorr += 2.0 * groupCorr
		}
		i = j
	}

	// Strictly discordant pair mass equals the weighted inversion count of
	// b's ranks in a-order; each discordant pair is counted once, so it
	// enters the symmetric-pair scale twice.
	discordant := weightedMergeSort(bSorted, wSorted, ws.sortBuf[:dl], ws.weightBuf[:dl], ws.cumBuf[:dl])

	totalW := 0.0
	sumSqW := 0.0
	for _, w := range weights {
		totalW += w
		sumSqW += w * w
	}
	totalWPairs := totalW*totalW - sumSqW

	// C − D over the symmetric-pair mass: all pairs minus those tied in
	// either variable (adding back the doubly counted both-tied mass) minus
	// twice the discordant mass.
	numer := totalWPairs - aTieCorr - bTieCorr + jointTieCorr - 4.0*discordant

	// The denominator collapses to 0 or NaN when a tie correction consumes
	// the whole pair mass, i.e. a variable is constant over the input.
	denom := math.Sqrt((totalWPairs - aTieCorr) * (totalWPairs - bTieCorr))
	if denom == 0.0 || math.IsNaN(denom) {
		if aTieCorr >= totalWPairs && bTieCorr >= totalWPairs {
			// Both variables fully tied: correlation is undefined, not zero.
			return math.NaN()
		}
		return 0
	}

	tau := numer / denom
	if tau >= 1.0 {
		return 1.0
	}
	if tau <= -1.0 {
		return -1.0
	}
	return tau
}

// rankWithWeights writes each observation's rank into ranks, giving tied
// groups the average rank of the group, and returns the variable's weighted
// tie correction: twice the sum of pairwise weight products within every
// tied group.
func (ws *TauBWorkspace) rankWithWeights(data, weights, ranks []float64) float64 {
	dl := len(data)
	indices := ws.indices[:dl]
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool { return data[indices[i]] < data[indices[j]] })

	tieCorr := 0.0
	curRank := 1

	for i := 0; i < dl; {
		// Find the run of values tied with the current one.
		j := i + 1
		for j < dl && data[indices[j]] == data[indices[i]] {
			j++
		}
		groupSize := j - i

		avgRank := float64(curRank) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[indices[k]] = avgRank
		}

		if groupSize > 1 {
			groupCorr := 0.0
			for k := i; k < j; k++ {
				for l := k + 1; l < j; l++ {
					groupCorr += weights[indices[k]] * weights[indices[l]]
				}
			}
			// Factor of 2 for symmetric pairs.
			tieCorr += 2.0 * groupCorr
		}

		curRank += groupSize
		i = j
	}

	return tieCorr
}
