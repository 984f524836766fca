package nabor

import (
	"testing"

	"github.com/banshee-data/faultskin/internal/fault"
)

func cell(x2, x3, fl, fp, ft, s1 float64) *fault.Cell {
	c := fault.NewCell(5, x2, x3, fl, fp, ft)
	c.S1 = s1
	return &c
}

func TestAdmissible(t *testing.T) {
	pl := NewPolicy(DefaultParams())
	base := cell(5, 5, 0.9, 0, 90, 0)

	tests := []struct {
		name string
		b    *fault.Cell
		want bool
	}{
		{"identical attributes in plane", cell(5, 6, 0.9, 0, 90, 0), true},
		{"nil nabor", nil, false},
		{"below lower likelihood", cell(5, 6, 0.1, 0, 90, 0), false},
		{"likelihood delta too large", cell(5, 6, 0.65, 0, 90, 0), false},
		{"likelihood delta at limit", cell(5, 6, 0.75, 0, 90, 0), true},
		{"strike across north within limit", cell(5, 6, 0.9, 355, 90, 0), true},
		{"strike delta too large", cell(5, 6, 0.9, 15, 90, 0), false},
		{"dip delta too large", cell(5, 6, 0.9, 0, 75, 0), false},
		{"throw delta too large", cell(5, 6, 0.9, 0, 90, 1.5), false},
		{"off plane", cell(5.6, 6, 0.9, 0, 90, 0), false},
		{"within planar distance", cell(5.4, 6, 0.9, 0, 90, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pl.Admissible(base, tt.b); got != tt.want {
				t.Errorf("Admissible(a, b) = %v, want %v", got, tt.want)
			}
			if got := pl.Admissible(tt.b, base); got != tt.want {
				t.Errorf("Admissible(b, a) = %v, want %v (not symmetric)", got, tt.want)
			}
		})
	}
}

func TestAdmissible_ThrowBounds(t *testing.T) {
	p := DefaultParams()
	p.MinThrow, p.MaxThrow = -1, 2
	pl := NewPolicy(p)

	a := cell(5, 5, 0.9, 0, 90, 1.5)
	if !pl.Admissible(a, cell(5, 6, 0.9, 0, 90, 1.9)) {
		t.Error("throws inside bounds rejected")
	}
	if pl.Admissible(a, cell(5, 6, 0.9, 0, 90, 2.1)) {
		t.Error("throw above max accepted")
	}
	if pl.Admissible(cell(5, 5, 0.9, 0, 90, -1.2), cell(5, 6, 0.9, 0, 90, -0.8)) {
		t.Error("throw below min accepted")
	}
	if !pl.ThrowInBounds(a) || pl.ThrowInBounds(cell(5, 5, 0.9, 0, 90, 3)) {
		t.Error("ThrowInBounds disagrees with bounds")
	}
}

func TestCompatible_IgnoresPlanarDistance(t *testing.T) {
	pl := NewPolicy(DefaultParams())
	a := cell(5, 5, 0.9, 0, 90, 0)
	b := cell(6.5, 6, 0.9, 0, 90, 0)
	if !pl.Compatible(a, b) {
		t.Error("Compatible should not test plane distance")
	}
	if pl.Admissible(a, b) {
		t.Error("Admissible should reject a cell 1.5 samples off plane")
	}
}

func TestAdmissible_LowLikelihoodNeighbourOfSeed(t *testing.T) {
	pl := NewPolicy(DefaultParams())
	seed := cell(5, 5, 0.85, 0, 90, 0)
	weak := cell(5, 6, 0.1, 0, 90, 0)
	if pl.Admissible(seed, weak) {
		t.Error("seed at 0.85 must not link to a neighbour at 0.1")
	}
}
