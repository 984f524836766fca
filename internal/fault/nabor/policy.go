// Package nabor decides whether two cells may be linked as nabors.
package nabor

import (
	"math"

	"github.com/banshee-data/faultskin/internal/fault"
)

// Params holds the admissibility thresholds.
type Params struct {
	LowerLikelihood    float64
	MinThrow           float64
	MaxThrow           float64
	MaxDeltaLikelihood float64
	MaxDeltaStrike     float64 // degrees, circular
	MaxDeltaDip        float64 // degrees
	MaxDeltaThrow      float64 // samples
	MaxPlanarDistance  float64 // samples
}

// DefaultParams returns the default thresholds with unbounded throw.
func DefaultParams() Params {
	return Params{
		LowerLikelihood:    0.2,
		MinThrow:           math.Inf(-1),
		MaxThrow:           math.Inf(1),
		MaxDeltaLikelihood: 0.2,
		MaxDeltaStrike:     10,
		MaxDeltaDip:        10,
		MaxDeltaThrow:      1,
		MaxPlanarDistance:  0.5,
	}
}

// Policy applies Params to pairs of cells.
type Policy struct {
	p Params
}

// NewPolicy returns a policy for p.
func NewPolicy(p Params) Policy { return Policy{p: p} }

// Params returns the thresholds the policy was built with.
func (pl Policy) Params() Params { return pl.p }

// Compatible applies every rule except the planar distance test. It is
// symmetric and treats a nil cell as incompatible.
func (pl Policy) Compatible(a, b *fault.Cell) bool {
	if a == nil || b == nil {
		return false
	}
	p := &pl.p
	if math.Min(a.Fl, b.Fl) < p.LowerLikelihood {
		return false
	}
	if math.Min(a.S1, b.S1) < p.MinThrow || math.Max(a.S1, b.S1) > p.MaxThrow {
		return false
	}
	if math.Abs(a.Fl-b.Fl) > p.MaxDeltaLikelihood {
		return false
	}
	if fault.StrikeDelta(a.Fp, b.Fp) > p.MaxDeltaStrike {
		return false
	}
	if math.Abs(a.Ft-b.Ft) > p.MaxDeltaDip {
		return false
	}
	if math.Abs(a.S1-b.S1) > p.MaxDeltaThrow {
		return false
	}
	return true
}

// Admissible reports whether a and b may be linked: they must be
// Compatible and each must lie within MaxPlanarDistance of the other's
// plane.
func (pl Policy) Admissible(a, b *fault.Cell) bool {
	if !pl.Compatible(a, b) {
		return false
	}
	return fault.DistanceToPlanes(a, b) <= pl.p.MaxPlanarDistance
}

// ThrowInBounds reports whether c's throw lies within [MinThrow, MaxThrow].
func (pl Policy) ThrowInBounds(c *fault.Cell) bool {
	return c.S1 >= pl.p.MinThrow && c.S1 <= pl.p.MaxThrow
}
