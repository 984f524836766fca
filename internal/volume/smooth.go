package volume

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// GaussianKernel returns a normalised Gaussian kernel truncated at four
// standard deviations. The kernel has odd length 2r+1.
func GaussianKernel(sigma float64) []float64 {
	r := int(math.Ceil(4 * sigma))
	k := make([]float64, 2*r+1)
	s := 1 / (2 * sigma * sigma)
	for i := -r; i <= r; i++ {
		k[i+r] = math.Exp(-float64(i*i) * s)
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// SmoothSlowAxes applies a Gaussian filter with the given sigma along the
// second and third axes, leaving the first (depth) axis untouched. Edges
// are extended with zero slope. Work is spread over GOMAXPROCS workers.
func SmoothSlowAxes(ctx context.Context, v *Volume, sigma float64) (*Volume, error) {
	if sigma <= 0 {
		return v.Clone(), nil
	}
	k := GaussianKernel(sigma)
	tmp := New(v.N1, v.N2, v.N3)
	if err := Parallel(ctx, v.N3, func(i3 int) {
		conv := newConvolver(k, v.N2)
		for i1 := 0; i1 < v.N1; i1++ {
			conv.apply(func(i int) float32 { return v.At(i1, i, i3) },
				func(i int, f float32) { tmp.Set(i1, i, i3, f) })
		}
	}); err != nil {
		return nil, err
	}
	out := New(v.N1, v.N2, v.N3)
	if err := Parallel(ctx, v.N2, func(i2 int) {
		conv := newConvolver(k, v.N3)
		for i1 := 0; i1 < v.N1; i1++ {
			conv.apply(func(i int) float32 { return tmp.At(i1, i2, i) },
				func(i int, f float32) { out.Set(i1, i2, i, f) })
		}
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Parallel runs fn for every index in [0,n), checking ctx between tasks.
// Each index must write a disjoint part of the output.
func Parallel(ctx context.Context, n int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

type convolver struct {
	k   []float64
	r   int
	n   int
	buf []float64
}

func newConvolver(k []float64, n int) *convolver {
	r := len(k) / 2
	return &convolver{k: k, r: r, n: n, buf: make([]float64, n+2*r)}
}

func (c *convolver) apply(get func(i int) float32, set func(i int, f float32)) {
	for i := range c.buf {
		j := i - c.r
		if j < 0 {
			j = 0
		} else if j >= c.n {
			j = c.n - 1
		}
		c.buf[i] = float64(get(j))
	}
	w := len(c.k)
	for i := 0; i < c.n; i++ {
		set(i, float32(floats.Dot(c.k, c.buf[i:i+w])))
	}
}
