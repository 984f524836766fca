package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an HTML page with a bar chart of skin sizes and a
// scatter of skin cells coloured by likelihood.
func WriteHTML(w io.Writer, title string, pool *fault.Pool, skins []*fault.Skin) error {
	s := Summarize(pool, skins)

	x := make([]string, len(skins))
	y := make([]opts.BarData, len(skins))
	for k, n := range s.Sizes {
		x[k] = strconv.Itoa(k)
		y[k] = opts.BarData{Value: n}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Skin sizes", Subtitle: fmt.Sprintf("skins=%d cells=%d mean fl=%.3f", s.Skins, s.Cells, s.MeanFl)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Skin", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cells"}),
	)
	bar.SetXAxis(x).AddSeries("cells", y)

	pts := make([]opts.ScatterData, 0, s.Cells)
	for _, sk := range skins {
		for _, id := range sk.Cells {
			c := pool.Cell(id)
			pts = append(pts, opts.ScatterData{Value: []interface{}{c.X.Z, c.X.Y, c.Fl}})
		}
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Skin cells", Subtitle: "plan view, coloured by likelihood"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x3", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "x2", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#3b4cc0", "#dddddd", "#b40426"}},
		}),
	)
	scatter.AddSeries("cells", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	page := components.NewPage()
	page.AddCharts(bar, scatter)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
