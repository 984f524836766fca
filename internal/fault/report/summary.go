// Package report summarises growth results and renders them as PNG plots
// and HTML charts.
package report

import (
	"github.com/banshee-data/faultskin/internal/fault"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the skins of one growth run.
type Summary struct {
	Skins    int
	Cells    int
	MinSize  int
	MaxSize  int
	MeanSize float64
	StdSize  float64 // sample standard deviation, zero for fewer than two skins
	MeanFl   float64 // over all skin cells

	Sizes  []int     // cells per skin, in skin order
	SkinFl []float64 // mean likelihood per skin
}

// Summarize computes size and likelihood statistics for skins.
func Summarize(pool *fault.Pool, skins []*fault.Skin) Summary {
	s := Summary{
		Skins:  len(skins),
		Sizes:  make([]int, len(skins)),
		SkinFl: make([]float64, len(skins)),
	}
	if len(skins) == 0 {
		return s
	}

	sizes := make([]float64, len(skins))
	var fls []float64
	for k, sk := range skins {
		s.Sizes[k] = sk.Size()
		sizes[k] = float64(sk.Size())
		s.Cells += sk.Size()

		skinFl := make([]float64, 0, sk.Size())
		for _, id := range sk.Cells {
			skinFl = append(skinFl, pool.Cell(id).Fl)
		}
		if len(skinFl) > 0 {
			s.SkinFl[k] = stat.Mean(skinFl, nil)
		}
		fls = append(fls, skinFl...)
	}

	s.MinSize, s.MaxSize = s.Sizes[0], s.Sizes[0]
	for _, n := range s.Sizes[1:] {
		s.MinSize = min(s.MinSize, n)
		s.MaxSize = max(s.MaxSize, n)
	}
	if len(sizes) > 1 {
		s.MeanSize, s.StdSize = stat.MeanStdDev(sizes, nil)
	} else {
		s.MeanSize = sizes[0]
	}
	if len(fls) > 0 {
		s.MeanFl = stat.Mean(fls, nil)
	}
	return s
}
