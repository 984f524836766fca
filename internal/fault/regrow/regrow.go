// Package regrow re-detects ridges around a stalled cell so that growth can
// continue across gaps in the detected cell set.
package regrow

import (
	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/grid"
	"github.com/banshee-data/faultskin/internal/fault/nabor"
	"github.com/banshee-data/faultskin/internal/fault/ridge"
	"github.com/banshee-data/faultskin/internal/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// Regrower finds candidate nabors in the 3×3×3 window around a cell. It
// reuses unclaimed pool cells where the window already has one and runs the
// ridge test on the remaining samples, using the strike and dip of the
// stalled cell. Cells it creates are appended to the pool.
type Regrower struct {
	pool       *fault.Pool
	fs         *volume.Volume // smoothed likelihood, nil disables re-detection
	policy     nabor.Policy
	opts       ridge.Options
	n1, n2, n3 int
	voxels     map[int64]fault.CellID
	created    int
}

// New indexes every cell of pool by voxel. fs must be the likelihood
// smoothed the way detection smoothed it; n1, n2 and n3 bound the window
// when fs is nil.
func New(pool *fault.Pool, fs *volume.Volume, n1, n2, n3 int, policy nabor.Policy, opts ridge.Options) *Regrower {
	r := &Regrower{
		pool:   pool,
		fs:     fs,
		policy: policy,
		opts:   opts,
		n1:     n1,
		n2:     n2,
		n3:     n3,
		voxels: make(map[int64]fault.CellID, pool.Len()),
	}
	for _, id := range pool.IDs() {
		c := pool.Cell(id)
		k := r.key(c.I1, c.I2, c.I3)
		if k < 0 {
			continue
		}
		// Keep the strongest cell when rounding puts two in one voxel.
		if prev, ok := r.voxels[k]; !ok || pool.Cell(prev).Fl < c.Fl {
			r.voxels[k] = id
		}
	}
	return r
}

// Created returns the number of cells appended by re-detection.
func (r *Regrower) Created() int { return r.created }

func (r *Regrower) key(i1, i2, i3 int) int64 {
	if i1 < 0 || i1 >= r.n1 || i2 < 0 || i2 >= r.n2 || i3 < 0 || i3 >= r.n3 {
		return -1
	}
	return int64(i1) + int64(r.n1)*(int64(i2)+int64(r.n2)*int64(i3))
}

// Result is the outcome of one search around a stalled cell.
type Result struct {
	Cands    []fault.CellID // unclaimed cells compatible with the stalled cell
	Anchor   r3.Vec         // ridge position re-detected at the cell's own sample
	Anchored bool           // whether the cell's own sample holds a ridge
}

// OK reports whether the search found any candidate.
func (res Result) OK() bool { return len(res.Cands) > 0 }

// Attempt collects candidates around cell id. The window spans one sample
// in i2 and i3 and one sample in i1, restricted to the shallower side when
// the cell already has an above nabor and to the deeper side when it has a
// below nabor. Candidates are unclaimed cells compatible with id.
func (r *Regrower) Attempt(id fault.CellID) Result {
	c := r.pool.Cell(id)
	lo1, hi1 := c.I1-1, c.I1+1
	if c.Nabor(fault.Above) != fault.NoCell {
		hi1 = c.I1
	}
	if c.Nabor(fault.Below) != fault.NoCell {
		lo1 = c.I1
	}
	return r.collect(id, lo1, hi1)
}

// Detect is Attempt over the full 3×3×3 window, whatever links the cell
// already has.
func (r *Regrower) Detect(id fault.CellID) Result {
	c := r.pool.Cell(id)
	return r.collect(id, c.I1-1, c.I1+1)
}

// Target returns where cell id should snap after a search: the nearest of
// the anchor and the re-detected candidates at the cell's own depth sample.
// Cells from the detected set are never snap targets. cand is the chosen
// candidate, or NoCell when the anchor is nearer. ok is false when there is
// neither.
func (r *Regrower) Target(id fault.CellID, res Result) (x r3.Vec, cand fault.CellID, ok bool) {
	c := r.pool.Cell(id)
	var layer []fault.CellID
	for _, n := range res.Cands {
		if int(n) >= r.pool.Detected() && r.pool.Cell(n).I1 == c.I1 {
			layer = append(layer, n)
		}
	}
	cand = grid.NewKDIndex(r.pool, layer).FindNearest(c.X)
	if res.Anchored {
		if cand == fault.NoCell || dist2(res.Anchor, c.X) <= dist2(r.pool.Cell(cand).X, c.X) {
			return res.Anchor, fault.NoCell, true
		}
	}
	if cand == fault.NoCell {
		return c.X, fault.NoCell, false
	}
	return r.pool.Cell(cand).X, cand, true
}

func dist2(a, b r3.Vec) float64 { return r3.Norm2(r3.Sub(a, b)) }

func (r *Regrower) collect(id fault.CellID, lo1, hi1 int) Result {
	c := *r.pool.Cell(id)
	var res Result

	if r.fs != nil {
		if rd, found := ridge.Probe(r.fs, c.I1, c.I2, c.I3, c.Fp, c.Ft, r.opts); found {
			res.Anchor = r3.Vec{X: float64(c.I1), Y: float64(c.I2) + rd.D2, Z: float64(c.I3) + rd.D3}
			res.Anchored = true
		}
	}

	for k3 := c.I3 - 1; k3 <= c.I3+1; k3++ {
		for k2 := c.I2 - 1; k2 <= c.I2+1; k2++ {
			for k1 := lo1; k1 <= hi1; k1++ {
				if k1 == c.I1 && k2 == c.I2 && k3 == c.I3 {
					continue
				}
				k := r.key(k1, k2, k3)
				if k < 0 {
					continue
				}
				if n, exists := r.voxels[k]; exists {
					nc := r.pool.Cell(n)
					if n != id && !nc.Used && !nc.InSkin() && r.policy.Compatible(&c, nc) {
						res.Cands = append(res.Cands, n)
					}
					continue
				}
				if n, made := r.redetect(&c, k, k1, k2, k3); made {
					res.Cands = append(res.Cands, n)
				}
			}
		}
	}
	return res
}

// redetect probes an empty sample with the orientation of c and appends the
// resulting cell if it is compatible with c.
func (r *Regrower) redetect(c *fault.Cell, k int64, k1, k2, k3 int) (fault.CellID, bool) {
	if r.fs == nil {
		return fault.NoCell, false
	}
	rd, found := ridge.Probe(r.fs, k1, k2, k3, c.Fp, c.Ft, r.opts)
	if !found {
		return fault.NoCell, false
	}
	nc := rd.Cell(k1, k2, k3, c.Fp, c.Ft)
	nc.S1 = c.S1
	if !r.policy.Compatible(c, &nc) {
		return fault.NoCell, false
	}
	id := r.pool.Add(nc)
	r.voxels[k] = id
	r.created++
	return id, true
}
