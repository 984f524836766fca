package fault

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CellID is a stable handle to a cell in a Pool.
type CellID int32

// NoCell marks an absent nabor or lookup miss.
const NoCell CellID = -1

// SkinID is a handle to a skin produced by one growth run.
type SkinID int32

// NoSkin marks a cell that is not a member of any skin.
const NoSkin SkinID = -1

// Direction identifies one of the four nabor links of a cell.
type Direction uint8

const (
	Above Direction = iota
	Below
	Left
	Right
)

// Directions lists all nabor directions in link order.
var Directions = [4]Direction{Above, Below, Left, Right}

// Opposite returns the direction that points back from a nabor.
func (d Direction) Opposite() Direction {
	switch d {
	case Above:
		return Below
	case Below:
		return Above
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) String() string {
	switch d {
	case Above:
		return "above"
	case Below:
		return "below"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Cell is an oriented point located on a ridge of fault likelihood.
//
// When viewed from the hanging wall toward the footwall, nabors lie above,
// below, left and right of the cell. Left and right follow fault strike at
// constant depth; above and below step one sample in depth.
type Cell struct {
	X          r3.Vec // position; X is x1 (depth), Y is x2, Z is x3
	I1, I2, I3 int    // nearest voxel

	Fl float64 // fault likelihood
	Fp float64 // strike, degrees
	Ft float64 // dip, degrees
	S1 float64 // throw, samples

	W r3.Vec // unit normal
	U r3.Vec // unit dip vector, pointing down-dip
	V r3.Vec // unit strike vector

	Nabors [4]CellID
	Skin   SkinID
	Used   bool
}

// NewCell constructs an unlinked, unclaimed cell.
func NewCell(x1, x2, x3, fl, fp, ft float64) Cell {
	c := Cell{
		Fl:     fl,
		Fp:     fp,
		Ft:     ft,
		Nabors: [4]CellID{NoCell, NoCell, NoCell, NoCell},
		Skin:   NoSkin,
	}
	c.setPosition(r3.Vec{X: x1, Y: x2, Z: x3})
	c.W = NormalFromStrikeDip(fp, ft)
	c.U = DipFromStrikeDip(fp, ft)
	c.V = StrikeFromStrikeDip(fp, ft)
	return c
}

func (c *Cell) setPosition(x r3.Vec) {
	c.X = x
	c.I1 = int(math.Round(x.X))
	c.I2 = int(math.Round(x.Y))
	c.I3 = int(math.Round(x.Z))
}

// Nabor returns the linked nabor in direction d, or NoCell.
func (c *Cell) Nabor(d Direction) CellID { return c.Nabors[d] }

// MissingNabor reports whether any of the four links is absent.
func (c *Cell) MissingNabor() bool {
	for _, id := range c.Nabors {
		if id == NoCell {
			return true
		}
	}
	return false
}

// InSkin reports whether the cell belongs to a skin.
func (c *Cell) InSkin() bool { return c.Skin != NoSkin }

// Interior reports whether the cell's voxel lies strictly inside a
// volume of shape n1×n2×n3.
func (c *Cell) Interior(n1, n2, n3 int) bool {
	return c.I1 > 0 && c.I1 < n1-1 &&
		c.I2 > 0 && c.I2 < n2-1 &&
		c.I3 > 0 && c.I3 < n3-1
}

// DistanceToPlanes returns the larger of the distances from each cell to the
// plane of the other.
func DistanceToPlanes(a, b *Cell) float64 {
	d := r3.Sub(a.X, b.X)
	dab := math.Abs(r3.Dot(a.W, d))
	dba := math.Abs(r3.Dot(b.W, d))
	return math.Max(dab, dba)
}
