package grid

import (
	"math"
	"sort"

	"github.com/banshee-data/faultskin/internal/fault"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRangeRadius is the half width, in samples, of the box searched
// around a cell by recovery and post-skin suppression.
const DefaultRangeRadius = 3.0

// KDIndex is a static k-d tree over cell positions taken when the index is
// built. Later moves of the cells are not reflected.
type KDIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewKDIndex builds an index over the given cells of pool.
func NewKDIndex(pool *fault.Pool, ids []fault.CellID) *KDIndex {
	pts := make(cellPoints, len(ids))
	for i, id := range ids {
		pts[i] = cellPoint{id: id, x: pool.Cell(id).X}
	}
	idx := &KDIndex{n: len(pts)}
	if len(pts) > 0 {
		idx.tree = kdtree.New(pts, false)
	}
	return idx
}

// Len returns the number of indexed cells.
func (k *KDIndex) Len() int { return k.n }

// FindNearest returns the cell nearest to x, or NoCell for an empty index.
func (k *KDIndex) FindNearest(x r3.Vec) fault.CellID {
	if k.tree == nil {
		return fault.NoCell
	}
	c, _ := k.tree.Nearest(cellPoint{id: fault.NoCell, x: x})
	if c == nil {
		return fault.NoCell
	}
	return c.(cellPoint).id
}

// FindInRange returns the cells whose positions lie in the closed box
// [lo, hi], sorted by id.
func (k *KDIndex) FindInRange(lo, hi r3.Vec) []fault.CellID {
	if k.tree == nil {
		return nil
	}
	center := r3.Scale(0.5, r3.Add(lo, hi))
	r2 := r3.Norm2(r3.Sub(hi, center))
	// The keeper admits points at distance ≤ r²; widen a little so corner
	// points are not lost to rounding.
	keep := kdtree.NewDistKeeper(r2 * (1 + 1e-9))
	k.tree.NearestSet(keep, cellPoint{id: fault.NoCell, x: center})

	var ids []fault.CellID
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(cellPoint)
		if inBox(p.x, lo, hi) {
			ids = append(ids, p.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindAround returns the cells within ±r samples of x on every axis.
func (k *KDIndex) FindAround(x r3.Vec, r float64) []fault.CellID {
	d := r3.Vec{X: r, Y: r, Z: r}
	return k.FindInRange(r3.Sub(x, d), r3.Add(x, d))
}

func inBox(x, lo, hi r3.Vec) bool {
	return x.X >= lo.X && x.X <= hi.X &&
		x.Y >= lo.Y && x.Y <= hi.Y &&
		x.Z >= lo.Z && x.Z <= hi.Z
}

func coord(x r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return x.X
	case 1:
		return x.Y
	case 2:
		return x.Z
	}
	return math.NaN()
}

// cellPoint is a kdtree.Comparable carrying the cell handle.
type cellPoint struct {
	id fault.CellID
	x  r3.Vec
}

func (p cellPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return coord(p.x, d) - coord(c.(cellPoint).x, d)
}

func (p cellPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (p cellPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.x, c.(cellPoint).x))
}

type cellPoints []cellPoint

func (p cellPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p cellPoints) Len() int                              { return len(p) }
func (p cellPoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, cellPoints: p}.Pivot() }
func (p cellPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts cellPoints along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	cellPoints
}

func (p plane) Less(i, j int) bool {
	return coord(p.cellPoints[i].x, p.Dim) < coord(p.cellPoints[j].x, p.Dim)
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.cellPoints = p.cellPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.cellPoints[i], p.cellPoints[j] = p.cellPoints[j], p.cellPoints[i]
}
