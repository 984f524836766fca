package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/faultskin/internal/fault"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plotter writes PNG plots of a growth run into one directory.
type Plotter struct {
	outputDir string
}

// NewPlotter creates outputDir if needed.
func NewPlotter(outputDir string) (*Plotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	return &Plotter{outputDir: outputDir}, nil
}

// SizeHistogram plots the distribution of skin sizes and returns the file
// written.
func (p *Plotter) SizeHistogram(s Summary) (string, error) {
	if s.Skins == 0 {
		return "", fmt.Errorf("size histogram: no skins")
	}
	vals := make(plotter.Values, len(s.Sizes))
	for i, n := range s.Sizes {
		vals[i] = float64(n)
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Skin sizes (%d skins, %d cells)", s.Skins, s.Cells)
	pl.X.Label.Text = "Cells per skin"
	pl.Y.Label.Text = "Skins"

	bins := min(max(s.Skins/2, 1), 40)
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return "", fmt.Errorf("size histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 70, G: 110, B: 190, A: 255}
	pl.Add(h)

	file := filepath.Join(p.outputDir, "skin_sizes.png")
	if err := pl.Save(8*vg.Inch, 4*vg.Inch, file); err != nil {
		return "", fmt.Errorf("save %s: %w", file, err)
	}
	return file, nil
}

// PlanView plots skin cells projected onto the x3-x2 plane, one colour per
// skin, and returns the file written.
func (p *Plotter) PlanView(pool *fault.Pool, skins []*fault.Skin) (string, error) {
	if len(skins) == 0 {
		return "", fmt.Errorf("plan view: no skins")
	}

	pl := plot.New()
	pl.Title.Text = "Fault skins (plan view)"
	pl.X.Label.Text = "x3 (samples)"
	pl.Y.Label.Text = "x2 (samples)"

	colors := skinColors(len(skins))
	for k, sk := range skins {
		pts := make(plotter.XYs, 0, sk.Size())
		for _, id := range sk.Cells {
			c := pool.Cell(id)
			pts = append(pts, plotter.XY{X: c.X.Z, Y: c.X.Y})
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("skin %d: %w", sk.ID, err)
		}
		sc.GlyphStyle.Color = colors[k]
		sc.GlyphStyle.Radius = vg.Points(1.5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		pl.Add(sc)
	}

	file := filepath.Join(p.outputDir, "skins_plan.png")
	if err := pl.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return "", fmt.Errorf("save %s: %w", file, err)
	}
	return file, nil
}

// skinColors returns n distinct colours spread across a diverging map.
func skinColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMax(1)
	cm.SetMin(0)
	return cm.Palette(max(n, 2)).Colors()[:n]
}
