// Package spatial provides region-of-interest maps over label images and
// k-d tree point queries used to audit simulated point layouts.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// ROIMap partitions a label field into regions of interest. Every non-zero
// label becomes one ROI holding the flat indices of its pixels; label 0 is
// background and is skipped. The flat indices address the same row-major
// layout as the image the labels were drawn on, so the map works unchanged
// for 2D and 3D fields.
func ROIMap(labels []uint64) map[uint64][]int {
	rois := make(map[uint64][]int)
	for i, v := range labels {
		if v == 0 {
			continue
		}
		rois[v] = append(rois[v], i)
	}
	return rois
}

// PointIndex is an immutable k-d tree over a set of n-dimensional points,
// intended for lookups only. All points must share one dimensionality.
type PointIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewPointIndex builds a point index. An empty point set yields an index
// whose queries report no neighbor (infinite distance).
func NewPointIndex(points [][]float64) *PointIndex {
	if len(points) == 0 {
		return &PointIndex{}
	}
	ps := make(kdtree.Points, len(points))
	for i, p := range points {
		ps[i] = kdtree.Point(p)
	}
	return &PointIndex{tree: kdtree.New(ps, false), n: len(points)}
}

// Len returns the number of indexed points.
func (idx *PointIndex) Len() int { return idx.n }

// NearestDistance returns the Euclidean distance from q to the closest
// indexed point, or +Inf for an empty index.
func (idx *PointIndex) NearestDistance(q []float64) float64 {
	if idx.tree == nil {
		return math.Inf(1)
	}
	_, distSq := idx.tree.Nearest(kdtree.Point(q))
	return math.Sqrt(distSq)
}

// NearestNeighborDistances returns, for each point, the Euclidean distance
// to the closest other point in the set. Coincident points are
// indistinguishable from self-matches and report +Inf.
func NearestNeighborDistances(points [][]float64) []float64 {
	out := make([]float64, len(points))
	if len(points) < 2 {
		for i := range out {
			out[i] = math.Inf(1)
		}
		return out
	}

	ps := make(kdtree.Points, len(points))
	for i, p := range points {
		ps[i] = kdtree.Point(p)
	}
	tree := kdtree.New(ps, false)

	for i, p := range points {
		keep := kdtree.NewNKeeper(2)
		tree.NearestSet(keep, kdtree.Point(p))

		best := math.Inf(1)
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			// The query point itself sits in the tree at distance 0.
			if cd.Dist > 0 && cd.Dist < best {
				best = cd.Dist
			}
		}
		out[i] = math.Sqrt(best)
	}
	return out
}

// MinSeparation returns the smallest pairwise Euclidean distance in the
// point set, or +Inf for fewer than two points.
func MinSeparation(points [][]float64) float64 {
	min := math.Inf(1)
	for _, d := range NearestNeighborDistances(points) {
		if d < min {
			min = d
		}
	}
	return min
}
