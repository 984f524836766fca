package ridge

import (
	"context"
	"fmt"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/monitoring"
	"github.com/banshee-data/faultskin/internal/volume"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Smooth returns fl smoothed along the slow axes with o.Sigma. Detection and
// local re-detection must see the same smoothed field.
func Smooth(ctx context.Context, fl *volume.Volume, o Options) (*volume.Volume, error) {
	return volume.SmoothSlowAxes(ctx, fl, o.Sigma)
}

// DetectCells scans every sample of the likelihood volume fl for ridges and
// returns a frozen pool holding one cell per sample with at least one
// accepted ridge. fp and ft hold strike and dip in degrees and must have the
// same shape as fl.
//
// Slices of constant i3 are processed in parallel. Cells are emitted in
// i3-major, then i2, then i1 order regardless of scheduling.
func DetectCells(ctx context.Context, fl, fp, ft *volume.Volume, o Options) (*fault.Pool, error) {
	if !fl.SameShape(fp) || !fl.SameShape(ft) {
		return nil, fmt.Errorf("detect cells: %w", fault.ErrShapeMismatch)
	}

	ctx, span := monitoring.Tracer("ridge").Start(ctx, "ridge.DetectCells",
		trace.WithAttributes(
			attribute.Int("n1", fl.N1),
			attribute.Int("n2", fl.N2),
			attribute.Int("n3", fl.N3),
		))
	defer span.End()

	fs, err := Smooth(ctx, fl, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "smoothing failed")
		return nil, err
	}

	slices := make([][]fault.Cell, fl.N3)
	err = volume.Parallel(ctx, fl.N3, func(i3 int) {
		slices[i3] = detectSlice(fs, fp, ft, i3, o)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detection cancelled")
		return nil, err
	}

	n := 0
	for _, s := range slices {
		n += len(s)
	}
	pool := fault.NewPool(n)
	for _, s := range slices {
		for _, c := range s {
			pool.Add(c)
		}
	}
	pool.Freeze()

	monitoring.CellsDetected.Add(float64(n))
	span.SetAttributes(attribute.Int("cells", n))
	return pool, nil
}

func detectSlice(fs, fp, ft *volume.Volume, i3 int, o Options) []fault.Cell {
	var cells []fault.Cell
	for i2 := 0; i2 < fs.N2; i2++ {
		for i1 := 0; i1 < fs.N1; i1++ {
			p := float64(fp.At(i1, i2, i3))
			t := float64(ft.At(i1, i2, i3))
			if r, ok := Probe(fs, i1, i2, i3, p, t, o); ok {
				cells = append(cells, r.Cell(i1, i2, i3, p, t))
			}
		}
	}
	return cells
}
