// Package grid provides the spatial indexes used while growing skins.
//
// CellGrid maps voxels to cells and answers the directional nabor queries
// that link a skin together. KDIndex answers nearest and box queries over
// an arbitrary set of cells.
package grid

import (
	"math"

	"github.com/banshee-data/faultskin/internal/fault"
	"gonum.org/v1/gonum/spatial/r3"
)

// CellGrid is a sparse voxel index over cells of one pool. Each voxel holds
// at most one cell; registering a second cell in an occupied voxel replaces
// the first.
type CellGrid struct {
	N1, N2, N3 int
	pool       *fault.Pool
	cells      map[int64]fault.CellID // voxel key → cell
}

// NewCellGrid creates an empty grid over an n1×n2×n3 volume.
func NewCellGrid(pool *fault.Pool, n1, n2, n3 int) *CellGrid {
	return &CellGrid{
		N1:    n1,
		N2:    n2,
		N3:    n3,
		pool:  pool,
		cells: make(map[int64]fault.CellID),
	}
}

// key returns the linear voxel key, or -1 outside the volume.
func (g *CellGrid) key(i1, i2, i3 int) int64 {
	if i1 < 0 || i1 >= g.N1 || i2 < 0 || i2 >= g.N2 || i3 < 0 || i3 >= g.N3 {
		return -1
	}
	return int64(i1) + int64(g.N1)*(int64(i2)+int64(g.N2)*int64(i3))
}

// Len returns the number of registered cells.
func (g *CellGrid) Len() int { return len(g.cells) }

// Get returns the cell registered at voxel (i1,i2,i3), or NoCell.
func (g *CellGrid) Get(i1, i2, i3 int) fault.CellID {
	k := g.key(i1, i2, i3)
	if k < 0 {
		return fault.NoCell
	}
	if id, ok := g.cells[k]; ok {
		return id
	}
	return fault.NoCell
}

// Contains reports whether id is the cell registered at its own voxel.
func (g *CellGrid) Contains(id fault.CellID) bool {
	c := g.pool.Cell(id)
	return c != nil && g.Get(c.I1, c.I2, c.I3) == id
}

// SetCell registers id at its current voxel. Cells outside the volume are
// ignored and SetCell reports false.
func (g *CellGrid) SetCell(id fault.CellID) bool {
	c := g.pool.Cell(id)
	k := g.key(c.I1, c.I2, c.I3)
	if k < 0 {
		return false
	}
	g.cells[k] = id
	return true
}

// Set registers every cell in ids.
func (g *CellGrid) Set(ids []fault.CellID) {
	for _, id := range ids {
		g.SetCell(id)
	}
}

// Remove unregisters id if it occupies its voxel.
func (g *CellGrid) Remove(id fault.CellID) {
	c := g.pool.Cell(id)
	k := g.key(c.I1, c.I2, c.I3)
	if k >= 0 && g.cells[k] == id {
		delete(g.cells, k)
	}
}

// Move repositions a cell in the pool and re-registers it at its new voxel.
// A different cell already registered there keeps the voxel, and id is left
// unregistered.
func (g *CellGrid) Move(id fault.CellID, x r3.Vec) {
	registered := g.Contains(id)
	g.Remove(id)
	g.pool.Move(id, x)
	if !registered {
		return
	}
	c := g.pool.Cell(id)
	if occ := g.Get(c.I1, c.I2, c.I3); occ == fault.NoCell || occ == id {
		g.SetCell(id)
	}
}

// Find returns the nabor of id in direction d, or NoCell.
func (g *CellGrid) Find(id fault.CellID, d fault.Direction) fault.CellID {
	switch d {
	case fault.Above:
		return g.FindAbove(id)
	case fault.Below:
		return g.FindBelow(id)
	case fault.Left:
		return g.FindLeft(id)
	default:
		return g.FindRight(id)
	}
}

// FindAbove returns the cell one sample shallower that lies up-dip of id and
// closest to its dip line.
func (g *CellGrid) FindAbove(id fault.CellID) fault.CellID { return g.findAboveBelow(id, true) }

// FindBelow returns the cell one sample deeper that lies down-dip of id and
// closest to its dip line.
func (g *CellGrid) FindBelow(id fault.CellID) fault.CellID { return g.findAboveBelow(id, false) }

// FindLeft returns the cell at the same depth that lies against strike from
// id and closest to its strike line.
func (g *CellGrid) FindLeft(id fault.CellID) fault.CellID { return g.findLeftRight(id, true) }

// FindRight returns the cell at the same depth that lies along strike from
// id and closest to its strike line.
func (g *CellGrid) FindRight(id fault.CellID) fault.CellID { return g.findLeftRight(id, false) }

func (g *CellGrid) findAboveBelow(id fault.CellID, above bool) fault.CellID {
	c := g.pool.Cell(id)
	k1 := c.I1 + 1
	if above {
		k1 = c.I1 - 1
	}
	best, dmin := fault.NoCell, math.MaxFloat64
	for k3 := c.I3 - 1; k3 <= c.I3+1; k3++ {
		for k2 := c.I2 - 1; k2 <= c.I2+1; k2++ {
			n := g.Get(k1, k2, k3)
			if n == fault.NoCell || n == id {
				continue
			}
			d := r3.Sub(g.pool.Cell(n).X, c.X)
			du := r3.Dot(d, c.U)
			if (above && du < 0) || (!above && du > 0) {
				if dd := r3.Norm2(r3.Sub(d, r3.Scale(du, c.U))); dd < dmin {
					best, dmin = n, dd
				}
			}
		}
	}
	return best
}

func (g *CellGrid) findLeftRight(id fault.CellID, left bool) fault.CellID {
	c := g.pool.Cell(id)
	best, dmin := fault.NoCell, math.MaxFloat64
	for k3 := c.I3 - 1; k3 <= c.I3+1; k3++ {
		for k2 := c.I2 - 1; k2 <= c.I2+1; k2++ {
			if k2 == c.I2 && k3 == c.I3 {
				continue
			}
			n := g.Get(c.I1, k2, k3)
			if n == fault.NoCell || n == id {
				continue
			}
			d := r3.Sub(g.pool.Cell(n).X, c.X)
			dv := r3.Dot(d, c.V)
			if (left && dv < 0) || (!left && dv > 0) {
				if dd := r3.Norm2(r3.Sub(d, r3.Scale(dv, c.V))); dd < dmin {
					best, dmin = n, dd
				}
			}
		}
	}
	return best
}
