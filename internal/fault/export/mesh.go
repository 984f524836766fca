// Package export turns fault cells into renderable geometry: flat vertex
// arrays with one quad per cell, and STL meshes of the same quads.
package export

import (
	"image/color"
	"math"

	"github.com/banshee-data/faultskin/internal/fault"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// RenderMesh holds four vertices per cell. Coordinates are written in
// (x3, x2, x1) order so that depth is the last axis.
type RenderMesh struct {
	Positions []float32 // 12 values per cell
	Normals   []float32 // 12 values per cell, the cell normal repeated
	Colors    []float32 // 12 values per cell, rgb in [0,1] from likelihood
}

// Quads returns the number of cells in the mesh.
func (m RenderMesh) Quads() int { return len(m.Positions) / 12 }

// Vertex returns vertex k of quad q in (x3, x2, x1) order.
func (m RenderMesh) Vertex(q, k int) r3.Vec {
	i := 12*q + 3*k
	return r3.Vec{X: float64(m.Positions[i]), Y: float64(m.Positions[i+1]), Z: float64(m.Positions[i+2])}
}

// LikelihoodColors maps fault likelihood in [0,1] to colour.
func LikelihoodColors() palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	cm.SetMax(1)
	cm.SetMin(0)
	return cm
}

// ToRenderMesh builds a square of side quadSize in the plane of each cell,
// centred on the cell position and aligned with its dip and strike.
func ToRenderMesh(pool *fault.Pool, ids []fault.CellID, quadSize float64) RenderMesh {
	h := 0.5 * quadSize
	corners := [4]r3.Vec{
		{X: 0, Y: -h, Z: -h},
		{X: 0, Y: h, Z: -h},
		{X: 0, Y: h, Z: h},
		{X: 0, Y: -h, Z: h},
	}
	cm := LikelihoodColors()

	m := RenderMesh{
		Positions: make([]float32, 0, 12*len(ids)),
		Normals:   make([]float32, 0, 12*len(ids)),
		Colors:    make([]float32, 0, 12*len(ids)),
	}
	for _, id := range ids {
		c := pool.Cell(id)
		cp, sp, ct, st := c.Orientation()
		rgb := colorOf(cm, c.Fl)
		for _, q := range corners {
			x := r3.Add(c.X, fault.RotatePoint(cp, sp, ct, st, q))
			m.Positions = append(m.Positions, float32(x.Z), float32(x.Y), float32(x.X))
			m.Normals = append(m.Normals, float32(c.W.Z), float32(c.W.Y), float32(c.W.X))
			m.Colors = append(m.Colors, rgb[0], rgb[1], rgb[2])
		}
	}
	return m
}

func colorOf(cm palette.ColorMap, fl float64) [3]float32 {
	fl = math.Max(cm.Min(), math.Min(cm.Max(), fl))
	col, err := cm.At(fl)
	if err != nil {
		col = color.Black
	}
	r, g, b, _ := col.RGBA()
	return [3]float32{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff}
}
