package fault

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vectors use X for x1 (depth, the fast axis), Y for x2 and Z for x3.

// NormalFromStrikeDip returns the unit fault normal for strike phi and dip
// theta, both in degrees.
func NormalFromStrikeDip(phi, theta float64) r3.Vec {
	cp, sp, ct, st := trig(phi, theta)
	return r3.Vec{X: ct, Y: -st * cp, Z: st * sp}
}

// StrikeFromStrikeDip returns the unit vector along fault strike. It lies in
// the x2-x3 plane, so moving along it never changes depth.
func StrikeFromStrikeDip(phi, theta float64) r3.Vec {
	cp, sp, _, _ := trig(phi, theta)
	return r3.Vec{X: 0, Y: sp, Z: cp}
}

// DipFromStrikeDip returns the unit vector pointing down the fault dip.
func DipFromStrikeDip(phi, theta float64) r3.Vec {
	cp, sp, ct, st := trig(phi, theta)
	return r3.Vec{X: st, Y: ct * cp, Z: -ct * sp}
}

func trig(phi, theta float64) (cp, sp, ct, st float64) {
	p := phi * math.Pi / 180
	t := theta * math.Pi / 180
	return math.Cos(p), math.Sin(p), math.Cos(t), math.Sin(t)
}

// StrikeDelta returns the absolute circular difference between two strikes
// in degrees, in [0, 180]. Inputs need not be reduced to [0, 360).
func StrikeDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return math.Abs(d)
}

// RotatePoint rotates x by dip (around x3) and then by strike (around x1),
// given the cosines and sines of both angles.
func RotatePoint(cp, sp, ct, st float64, x r3.Vec) r3.Vec {
	return r3.Vec{
		X: ct*x.X + st*x.Y,
		Y: -cp*st*x.X + cp*ct*x.Y + sp*x.Z,
		Z: sp*st*x.X - sp*ct*x.Y + cp*x.Z,
	}
}

// Orientation returns the cosines and sines of strike and dip for a cell.
func (c *Cell) Orientation() (cp, sp, ct, st float64) {
	return trig(c.Fp, c.Ft)
}
