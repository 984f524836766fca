// Package faulttest provides fixtures and invariant checks shared by the
// fault packages' tests.
package faulttest

import (
	"testing"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/nabor"
	"github.com/banshee-data/faultskin/internal/volume"
)

// VerticalSheet returns the cells of an n1×n3 vertical fault at x2 with
// strike 0 and dip 90, ordered by i3 then i1.
func VerticalSheet(n1, n3 int, x2, fl float64) []fault.Cell {
	cells := make([]fault.Cell, 0, n1*n3)
	for i3 := 0; i3 < n3; i3++ {
		for i1 := 0; i1 < n1; i1++ {
			cells = append(cells, fault.NewCell(float64(i1), x2, float64(i3), fl, 0, 90))
		}
	}
	return cells
}

// Row returns cells at depth i1 and lateral position i2 for i3 in [from, to),
// with strike 0 and dip 0.
func Row(i1, i2, from, to int, fl float64) []fault.Cell {
	var cells []fault.Cell
	for i3 := from; i3 < to; i3++ {
		cells = append(cells, fault.NewCell(float64(i1), float64(i2), float64(i3), fl, 0, 0))
	}
	return cells
}

// RidgeVolume returns a likelihood volume that is one on the plane i2 at
// every depth and zero elsewhere. When i3s is non-empty only those traces
// along x3 are set.
func RidgeVolume(n1, n2, n3, i2 int, i3s ...int) *volume.Volume {
	v := volume.New(n1, n2, n3)
	if len(i3s) == 0 {
		for i3 := 0; i3 < n3; i3++ {
			i3s = append(i3s, i3)
		}
	}
	for _, i3 := range i3s {
		for i1 := 0; i1 < n1; i1++ {
			v.Set(i1, i2, i3, 1)
		}
	}
	return v
}

// Orientation returns constant strike and dip volumes.
func Orientation(n1, n2, n3 int, fp, ft float32) (*volume.Volume, *volume.Volume) {
	return volume.Filled(n1, n2, n3, fp), volume.Filled(n1, n2, n3, ft)
}

// Membership returns the skin handle of every cell in pool order.
func Membership(pool *fault.Pool) []fault.SkinID {
	out := make([]fault.SkinID, pool.Len())
	for _, id := range pool.IDs() {
		out[id] = pool.Cell(id).Skin
	}
	return out
}

// CheckSkins verifies the structural invariants of a growth result:
// skins are numbered densely and hold at least minSize cells, each cell
// belongs to at most one skin, links are mutual and stay inside one skin,
// linked cells satisfy policy and cells outside skins carry no links.
func CheckSkins(t testing.TB, pool *fault.Pool, skins []*fault.Skin, policy nabor.Policy, minSize int) {
	t.Helper()
	owner := make(map[fault.CellID]fault.SkinID)
	for k, s := range skins {
		if s.ID != fault.SkinID(k) {
			t.Errorf("skin %d has handle %d", k, s.ID)
		}
		if s.Size() < minSize {
			t.Errorf("skin %d has %d cells, want at least %d", k, s.Size(), minSize)
		}
		for _, id := range s.Cells {
			if prev, dup := owner[id]; dup {
				t.Errorf("cell %d in skins %d and %d", id, prev, s.ID)
			}
			owner[id] = s.ID
			if got := pool.Cell(id).Skin; got != s.ID {
				t.Errorf("cell %d of skin %d records skin %d", id, s.ID, got)
			}
		}
	}

	for _, id := range pool.IDs() {
		c := pool.Cell(id)
		if _, ok := owner[id]; !ok {
			if c.InSkin() {
				t.Errorf("cell %d records skin %d but no skin lists it", id, c.Skin)
			}
			for _, d := range fault.Directions {
				if c.Nabor(d) != fault.NoCell {
					t.Errorf("unclaimed cell %d has %s nabor %d", id, d, c.Nabor(d))
				}
			}
			continue
		}
		for _, d := range fault.Directions {
			nid := c.Nabor(d)
			if nid == fault.NoCell {
				continue
			}
			n := pool.Cell(nid)
			if n.Nabor(d.Opposite()) != id {
				t.Errorf("link %d %s %d is not mirrored", id, d, nid)
			}
			if n.Skin != c.Skin {
				t.Errorf("link %d %s %d crosses skins %d and %d", id, d, nid, c.Skin, n.Skin)
			}
			if !policy.Admissible(c, n) {
				t.Errorf("link %d %s %d violates the nabor policy", id, d, nid)
			}
		}
	}
}
