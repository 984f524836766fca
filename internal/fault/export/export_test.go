package export

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestToRenderMesh_VerticalCell(t *testing.T) {
	pool := fault.PoolFromCells([]fault.Cell{fault.NewCell(2, 3, 4, 0.9, 0, 90)})
	m := ToRenderMesh(pool, pool.IDs(), 2)

	require.Equal(t, 1, m.Quads())
	require.Len(t, m.Normals, 12)
	require.Len(t, m.Colors, 12)

	want := []float32{
		3, 3, 1,
		3, 3, 3,
		5, 3, 3,
		5, 3, 1,
	}
	assert.InDeltaSlice(t, want, m.Positions, 1e-6)
	for k := 0; k < 4; k++ {
		assert.InDeltaSlice(t, []float32{0, -1, 0}, m.Normals[3*k:3*k+3], 1e-6)
	}
}

func TestToRenderMesh_CornersLieInCellPlane(t *testing.T) {
	c := fault.NewCell(10, 20, 30, 0.5, 30, 60)
	pool := fault.PoolFromCells([]fault.Cell{c})
	m := ToRenderMesh(pool, pool.IDs(), 1)

	centre := r3.Vec{X: c.X.Z, Y: c.X.Y, Z: c.X.X}
	normal := r3.Vec{X: c.W.Z, Y: c.W.Y, Z: c.W.X}
	for k := 0; k < 4; k++ {
		d := r3.Sub(m.Vertex(0, k), centre)
		assert.InDelta(t, 0, r3.Dot(d, normal), 1e-5, "corner %d off plane", k)
		assert.InDelta(t, math.Sqrt2/2, r3.Norm(d), 1e-5, "corner %d", k)
	}
}

func TestToRenderMesh_ColorsFollowLikelihood(t *testing.T) {
	pool := fault.PoolFromCells([]fault.Cell{
		fault.NewCell(0, 0, 0, 0, 0, 90),
		fault.NewCell(0, 0, 1, 1, 0, 90),
		fault.NewCell(0, 0, 2, 1.5, 0, 90),
	})
	m := ToRenderMesh(pool, pool.IDs(), 1)
	require.Equal(t, 3, m.Quads())

	low, high, over := m.Colors[0:3], m.Colors[12:15], m.Colors[24:27]
	assert.NotEqual(t, low, high)
	assert.Equal(t, high, over, "likelihood above one is clamped")
	for _, v := range m.Colors {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestWriteSTL(t *testing.T) {
	pool := fault.PoolFromCells([]fault.Cell{
		fault.NewCell(2, 3, 4, 0.9, 0, 90),
		fault.NewCell(2, 3, 5, 0.9, 0, 90),
	})
	m := ToRenderMesh(pool, pool.IDs(), 1)

	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, m))

	tris, err := model3d.ReadSTL(&buf)
	require.NoError(t, err)
	assert.Len(t, tris, 4)
}

func TestWriteSTL_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteSTL(&buf, RenderMesh{}))
	assert.Zero(t, buf.Len())
}

func TestSaveSTL(t *testing.T) {
	pool := fault.PoolFromCells([]fault.Cell{fault.NewCell(2, 3, 4, 0.9, 0, 90)})
	path := filepath.Join(t.TempDir(), "skin.stl")
	require.NoError(t, SaveSTL(path, ToRenderMesh(pool, pool.IDs(), 1)))
	assert.FileExists(t, path)

	assert.Error(t, SaveSTL(filepath.Join(t.TempDir(), "missing", "skin.stl"), ToRenderMesh(pool, pool.IDs(), 1)))
}
