package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/faulttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSkins returns a pool with a 2×3 sheet at x2=2 in skin 0 and a 2×1
// sheet at x2=5 in skin 1.
func twoSkins(t *testing.T) (*fault.Pool, []*fault.Skin) {
	t.Helper()
	cells := append(faulttest.VerticalSheet(2, 3, 2, 0.6), faulttest.VerticalSheet(2, 1, 5, 0.9)...)
	pool := fault.PoolFromCells(cells)
	a, b := fault.NewSkin(0), fault.NewSkin(1)
	for id := fault.CellID(0); id < 6; id++ {
		a.Add(pool, id)
	}
	b.Add(pool, 6)
	b.Add(pool, 7)
	return pool, []*fault.Skin{a, b}
}

func TestSummarize(t *testing.T) {
	pool, skins := twoSkins(t)
	s := Summarize(pool, skins)

	assert.Equal(t, 2, s.Skins)
	assert.Equal(t, 8, s.Cells)
	assert.Equal(t, []int{6, 2}, s.Sizes)
	assert.Equal(t, 2, s.MinSize)
	assert.Equal(t, 6, s.MaxSize)
	assert.InDelta(t, 4.0, s.MeanSize, 1e-12)
	assert.InDelta(t, 2.8284271, s.StdSize, 1e-6)
	assert.InDeltaSlice(t, []float64{0.6, 0.9}, s.SkinFl, 1e-12)
	assert.InDelta(t, (6*0.6+2*0.9)/8, s.MeanFl, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(fault.NewPool(0), nil)
	assert.Zero(t, s.Skins)
	assert.Zero(t, s.Cells)
	assert.Empty(t, s.Sizes)
}

func TestSummarize_SingleSkin(t *testing.T) {
	pool, skins := twoSkins(t)
	s := Summarize(pool, skins[:1])
	assert.Equal(t, 6.0, s.MeanSize)
	assert.Zero(t, s.StdSize)
}

func TestPlotter(t *testing.T) {
	pool, skins := twoSkins(t)
	dir := filepath.Join(t.TempDir(), "plots")
	p, err := NewPlotter(dir)
	require.NoError(t, err)

	hist, err := p.SizeHistogram(Summarize(pool, skins))
	require.NoError(t, err)
	plan, err := p.PlanView(pool, skins)
	require.NoError(t, err)

	for _, f := range []string{hist, plan} {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), f)
		assert.Equal(t, dir, filepath.Dir(f))
	}
}

func TestPlotter_NoSkins(t *testing.T) {
	p, err := NewPlotter(t.TempDir())
	require.NoError(t, err)

	_, err = p.SizeHistogram(Summary{})
	assert.Error(t, err)
	_, err = p.PlanView(fault.NewPool(0), nil)
	assert.Error(t, err)
}

func TestSkinColors(t *testing.T) {
	assert.Nil(t, skinColors(0))
	assert.Len(t, skinColors(1), 1)
	cs := skinColors(3)
	require.Len(t, cs, 3)
	assert.NotEqual(t, cs[0], cs[2])
}

func TestWriteHTML(t *testing.T) {
	pool, skins := twoSkins(t)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "faultskin run", pool, skins))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"), "page should load echarts")
	assert.Contains(t, html, "Skin sizes")
	assert.Contains(t, html, "Skin cells")
}
