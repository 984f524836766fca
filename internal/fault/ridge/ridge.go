// Package ridge locates ridges of fault likelihood and turns them into
// oriented cells.
//
// A ridge is a strict local maximum of smoothed likelihood across the fault,
// tested along one of four in-plane directions chosen by the strike at the
// sample. The ridge position and peak likelihood are refined by fitting a
// parabola through the three samples on the test line.
package ridge

import (
	"math"

	"github.com/banshee-data/faultskin/internal/config"
	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// minCurvature rejects parabola fits whose second difference is too flat to
// locate a peak.
const minCurvature = 1e-6

// Options controls ridge detection.
type Options struct {
	Sigma                 float64 // Gaussian smoothing along the slow axes
	LowerLikelihood       float64 // minimum refined likelihood of a ridge
	BoundaryWidth         int     // samples considered near a slow-axis boundary
	BoundaryCosineSquared float64 // max squared normal component toward a near boundary
}

// DefaultOptions returns the detection defaults.
func DefaultOptions() Options {
	return Options{
		Sigma:                 1.0,
		LowerLikelihood:       0.2,
		BoundaryWidth:         5,
		BoundaryCosineSquared: 0.75,
	}
}

// OptionsFromTuning builds Options from a tuning config.
func OptionsFromTuning(cfg *config.TuningConfig) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		Sigma:                 cfg.GetSmoothingSigma(),
		LowerLikelihood:       cfg.GetLowerLikelihood(),
		BoundaryWidth:         cfg.GetBoundaryWidth(),
		BoundaryCosineSquared: cfg.GetBoundaryCosineSquared(),
	}
}

// orientation is one of the four ridge test lines through a sample. The
// plus sample sits at (i2+d2, i3+d3) and the minus sample mirrors it.
type orientation struct {
	name           string
	d2, d3         int
	bins           [2][2]float64 // inclusive strike intervals
	check2, check3 bool          // boundaries the line can be confused with
}

var orientations = [4]orientation{
	{name: "S-N", d2: 1, d3: 0, bins: [2][2]float64{{157.5, 202.5}, {337.5, 382.5}}, check2: true},
	{name: "SW-NE", d2: 1, d3: -1, bins: [2][2]float64{{22.5, 67.5}, {202.5, 247.5}}, check2: true, check3: true},
	{name: "W-E", d2: 0, d3: 1, bins: [2][2]float64{{67.5, 112.5}, {247.5, 292.5}}, check3: true},
	{name: "NW-SE", d2: 1, d3: 1, bins: [2][2]float64{{112.5, 157.5}, {292.5, 337.5}}, check2: true, check3: true},
}

// accepts reports whether strike fp, reduced to [0,360), falls in one of the
// orientation's bins. The S-N bin that wraps past north is tested both as
// [337.5,360) and as [0,22.5].
func (o *orientation) accepts(fp float64) bool {
	for _, b := range o.bins {
		if fp >= b[0] && fp <= b[1] {
			return true
		}
		if fp+360 >= b[0] && fp+360 <= b[1] {
			return true
		}
	}
	return false
}

// Ridge is the averaged result of all orientations that found a ridge at
// one sample.
type Ridge struct {
	Fl     float64 // refined likelihood
	D2, D3 float64 // sub-sample offsets along i2 and i3
	N      int     // number of orientations that passed
}

// Probe runs the ridge test at sample (i1,i2,i3) of the smoothed likelihood
// f using strike fp and dip ft in degrees. It reports false when no
// orientation yields an acceptable ridge.
func Probe(f *volume.Volume, i1, i2, i3 int, fp, ft float64, o Options) (Ridge, bool) {
	if !f.Contains(i1, i2, i3) {
		return Ridge{}, false
	}
	fp = math.Mod(fp, 360)
	if fp < 0 {
		fp += 360
	}
	n2, n3 := f.N2, f.N3
	f0 := float64(f.At(i1, i2, i3))

	var (
		w     r3.Vec
		haveW bool
	)
	near2 := i2 < o.BoundaryWidth || i2 >= n2-o.BoundaryWidth
	near3 := i3 < o.BoundaryWidth || i3 >= n3-o.BoundaryWidth

	var r Ridge
	for k := range orientations {
		or := &orientations[k]
		if !or.accepts(fp) {
			continue
		}
		fplus := float64(f.At(i1, clamp(i2+or.d2, n2), clamp(i3+or.d3, n3)))
		fminus := float64(f.At(i1, clamp(i2-or.d2, n2), clamp(i3-or.d3, n3)))
		if !(fplus < f0 && fminus < f0) {
			continue
		}
		f1 := 0.5 * (fplus - fminus)
		f2 := fplus - 2*f0 + fminus
		if math.Abs(f2) < minCurvature {
			continue
		}
		dr := -f1 / f2
		fr := f0 + f1*dr + 0.5*f2*dr*dr
		if fr < o.LowerLikelihood {
			continue
		}
		if (or.check2 && near2) || (or.check3 && near3) {
			if !haveW {
				w, haveW = fault.NormalFromStrikeDip(fp, ft), true
			}
			if or.check2 && near2 && w.Y*w.Y > o.BoundaryCosineSquared {
				continue
			}
			if or.check3 && near3 && w.Z*w.Z > o.BoundaryCosineSquared {
				continue
			}
		}
		r.Fl += fr
		r.D2 += float64(or.d2) * dr
		r.D3 += float64(or.d3) * dr
		r.N++
	}
	if r.N == 0 {
		return Ridge{}, false
	}
	n := float64(r.N)
	r.Fl /= n
	r.D2 /= n
	r.D3 /= n
	return r, true
}

// Cell builds the cell for a ridge found at (i1,i2,i3).
func (r Ridge) Cell(i1, i2, i3 int, fp, ft float64) fault.Cell {
	return fault.NewCell(float64(i1), float64(i2)+r.D2, float64(i3)+r.D3, r.Fl, fp, ft)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
