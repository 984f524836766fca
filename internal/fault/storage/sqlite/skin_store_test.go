package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/banshee-data/faultskin/internal/db"
	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/faulttest"
	"github.com/banshee-data/faultskin/internal/monitoring"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SkinStore {
	t.Helper()
	defer monitoring.Quiet()()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "skins.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewSkinStore(database.DB)
}

// linkedSheet returns a 2×3 vertical sheet with all grid links set, in a
// single skin, plus one unclaimed cell.
func linkedSheet() (*fault.Pool, []*fault.Skin) {
	cells := append(faulttest.VerticalSheet(2, 3, 4, 0.7), fault.NewCell(0, 9, 9, 0.3, 0, 90))
	for i := range cells {
		cells[i].S1 = float64(i) / 10
	}
	pool := fault.PoolFromCells(cells)
	skin := fault.NewSkin(0)
	// Sheet ids are i1 + 2*i3.
	for i3 := 0; i3 < 3; i3++ {
		for i1 := 0; i1 < 2; i1++ {
			id := fault.CellID(i1 + 2*i3)
			skin.Add(pool, id)
			if i1 == 0 {
				pool.Link(id, fault.Below, id+1)
			}
			if i3 < 2 {
				pool.Link(id, fault.Right, id+2)
			}
		}
	}
	return pool, []*fault.Skin{skin}
}

func TestSkinStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pool, skins := linkedSheet()

	run := &Run{N1: 2, N2: 10, N3: 10, ParamsJSON: json.RawMessage(`{"minSkinSize":1}`), Note: "sheet"}
	require.NoError(t, store.SaveRun(ctx, run, pool, skins))
	require.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAt)
	assert.Equal(t, 7, run.CellCount)
	assert.Equal(t, 1, run.SkinCount)

	got, err := store.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-saved +loaded):\n%s", diff)
	}

	recs, err := store.ListSkins(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 6, recs[0].CellCount)
	assert.InDelta(t, 0.7, recs[0].MeanFl, 1e-9)

	lp, ls, err := store.LoadSkinCells(ctx, run.RunID, 0)
	require.NoError(t, err)
	require.Equal(t, 6, lp.Len())
	require.Equal(t, 6, ls.Size())

	for i, id := range skins[0].Cells {
		want, have := pool.Cell(id), lp.Cell(ls.Cells[i])
		opts := cmp.Options{cmpopts.IgnoreFields(fault.Cell{}, "Nabors"), cmpopts.EquateApprox(0, 1e-12)}
		if diff := cmp.Diff(*want, *have, opts); diff != "" {
			t.Errorf("cell %d mismatch (-saved +loaded):\n%s", i, diff)
		}
		for _, d := range fault.Directions {
			assert.Equal(t, want.Nabor(d), have.Nabor(d), "cell %d %s", i, d)
		}
	}
}

func TestSkinStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pool, skins := linkedSheet()

	older := &Run{CreatedAt: 100}
	newer := &Run{CreatedAt: 200}
	require.NoError(t, store.SaveRun(ctx, older, pool, skins))
	require.NoError(t, store.SaveRun(ctx, newer, pool, nil))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, older.RunID, runs[1].RunID)
	assert.Nil(t, runs[0].ParamsJSON)

	require.NoError(t, store.DeleteRun(ctx, older.RunID))
	_, err = store.GetRun(ctx, older.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, _, err = store.LoadSkinCells(ctx, older.RunID, 0)
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, store.DeleteRun(ctx, older.RunID), ErrRunNotFound)

	runs, err = store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSkinStore_MissingSkin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pool, skins := linkedSheet()
	run := &Run{}
	require.NoError(t, store.SaveRun(ctx, run, pool, skins))

	_, _, err := store.LoadSkinCells(ctx, run.RunID, 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunNotFound)
}

func TestSkinStore_DuplicateRunID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pool, skins := linkedSheet()

	require.NoError(t, store.SaveRun(ctx, &Run{RunID: "fixed"}, pool, skins))
	assert.Error(t, store.SaveRun(ctx, &Run{RunID: "fixed"}, pool, skins))

	recs, err := store.ListSkins(ctx, "fixed")
	require.NoError(t, err)
	assert.Len(t, recs, 1, "failed save must roll back")
}
