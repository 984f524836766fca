// Package grow links cells into fault skins.
//
// Growth starts from the strongest unclaimed seed and repeatedly takes the
// highest-likelihood cell from a priority queue, linking it to mutually
// consistent, admissible nabors found in a voxel grid. When the queue runs
// dry, cells at the edge of the skin that still miss a nabor are handed to
// a local re-detection step, which may uncover cells the global detection
// missed. Skins smaller than the minimum size are dissolved at the end.
//
// A run mutates the pool it is given: links, skin handles, claims and
// positions of snapped cells. Call Pool.Reset to grow again from scratch.
package grow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/grid"
	"github.com/banshee-data/faultskin/internal/fault/nabor"
	"github.com/banshee-data/faultskin/internal/fault/regrow"
	"github.com/banshee-data/faultskin/internal/fault/ridge"
	"github.com/banshee-data/faultskin/internal/monitoring"
	"github.com/banshee-data/faultskin/internal/volume"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoVolume is returned when no likelihood volume is supplied.
var ErrNoVolume = errors.New("likelihood volume is required")

// Stats summarises one growth run.
type Stats struct {
	Seeds         int // cells eligible as seeds
	SkinsGrown    int // skins completed, before size filtering
	SkinsRetained int
	CellsInSkins  int // cells in retained skins
	Boundary      int // cells queued for recovery
	Recoveries    int // recovery attempts
	Recovered     int // attempts that found candidates
	Redetected    int // cells appended by re-detection
	Suppressed    int // cells retired by post-skin suppression
}

// Result holds the retained skins and run statistics.
type Result struct {
	Skins []*fault.Skin
	Stats Stats
}

// GrowSkins grows skins from the cells in pool and returns those with at
// least cfg.MinSkinSize cells, numbered from zero. fl is the unsmoothed
// likelihood volume the cells were detected in. Only an invalid config, a
// missing volume or cancellation of ctx produce an error.
func GrowSkins(ctx context.Context, pool *fault.Pool, fl *volume.Volume, cfg *Config) ([]*fault.Skin, error) {
	res, err := Grow(ctx, pool, fl, cfg)
	if err != nil {
		return nil, err
	}
	return res.Skins, nil
}

// Grow is GrowSkins with run statistics.
func Grow(ctx context.Context, pool *fault.Pool, fl *volume.Volume, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fl == nil {
		return nil, fmt.Errorf("grow skins: %w", ErrNoVolume)
	}

	start := time.Now()
	ctx, span := monitoring.Tracer("grow").Start(ctx, "grow.GrowSkins",
		trace.WithAttributes(
			attribute.Int("cells", pool.Len()),
			attribute.Int("min_skin_size", cfg.MinSkinSize),
			attribute.Bool("recovery", cfg.Recovery),
		))
	defer span.End()

	r, err := newRun(ctx, pool, fl, cfg)
	if err == nil {
		err = r.loop(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "growth aborted")
		return nil, err
	}
	r.postFilter()

	monitoring.GrowDuration.Observe(time.Since(start).Seconds())
	monitoring.SkinsRetained.Add(float64(r.stats.SkinsRetained))
	monitoring.CellsRedetected.Add(float64(r.stats.Redetected))
	span.SetAttributes(
		attribute.Int("skins_grown", r.stats.SkinsGrown),
		attribute.Int("skins_retained", r.stats.SkinsRetained),
	)
	monitoring.Logf("grew %d skins from %d seeds, kept %d with >= %d cells (%d cells); %d/%d recoveries, %d cells re-detected, %d suppressed",
		r.stats.SkinsGrown, r.stats.Seeds, r.stats.SkinsRetained, cfg.MinSkinSize, r.stats.CellsInSkins,
		r.stats.Recovered, r.stats.Recoveries, r.stats.Redetected, r.stats.Suppressed)

	return &Result{Skins: r.skins, Stats: r.stats}, nil
}

// state is a step of the growth state machine.
type state int

const (
	selectingSeed state = iota
	growing
	recovering
	skinComplete
	done
)

func (s state) String() string {
	switch s {
	case selectingSeed:
		return "selecting-seed"
	case growing:
		return "growing"
	case recovering:
		return "recovering"
	case skinComplete:
		return "skin-complete"
	case done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// run is the state of one Grow call. Nothing in it is shared between runs.
type run struct {
	cfg        *Config
	pool       *fault.Pool
	policy     nabor.Policy
	n1, n2, n3 int

	regrower *regrow.Regrower // nil without recovery
	kd       *grid.KDIndex    // nil without suppression
	all      *grid.CellGrid   // every cell, used without recovery

	seeds []fault.CellID
	next  int

	skin   *fault.Skin
	cells  *grid.CellGrid
	growQ  queue
	boundQ queue

	skins []*fault.Skin
	stats Stats
}

func newRun(ctx context.Context, pool *fault.Pool, fl *volume.Volume, cfg *Config) (*run, error) {
	r := &run{
		cfg:    cfg,
		pool:   pool,
		policy: cfg.Policy(),
		n1:     fl.N1,
		n2:     fl.N2,
		n3:     fl.N3,
	}

	if cfg.Recovery {
		fs, err := ridge.Smooth(ctx, fl, cfg.Ridge)
		if err != nil {
			return nil, err
		}
		r.regrower = regrow.New(pool, fs, r.n1, r.n2, r.n3, r.policy, cfg.redetectOptions())
	} else {
		r.all = grid.NewCellGrid(pool, r.n1, r.n2, r.n3)
		r.all.Set(pool.IDs())
	}
	if cfg.SuppressRadius > 0 {
		r.kd = grid.NewKDIndex(pool, pool.IDs())
	}

	for _, id := range pool.IDs() {
		c := pool.Cell(id)
		if c.Fl >= cfg.UpperLikelihood && r.policy.ThrowInBounds(c) {
			r.seeds = append(r.seeds, id)
		}
	}
	sort.SliceStable(r.seeds, func(i, j int) bool {
		return pool.Cell(r.seeds[i]).Fl > pool.Cell(r.seeds[j]).Fl
	})
	r.stats.Seeds = len(r.seeds)
	return r, nil
}

// loop drives the state machine until every seed is consumed. ctx is
// checked before each step.
func (r *run) loop(ctx context.Context) error {
	for st := selectingSeed; st != done; {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch st {
		case selectingSeed:
			st = r.selectSeed()
		case growing:
			st = r.growStep()
		case recovering:
			st = r.recoverStep()
		case skinComplete:
			st = r.completeSkin()
		default:
			return fmt.Errorf("grow: unexpected state %s", st)
		}
	}
	return nil
}

func (r *run) selectSeed() state {
	for r.next < len(r.seeds) {
		id := r.seeds[r.next]
		r.next++
		c := r.pool.Cell(id)
		if c.Used || c.InSkin() {
			continue
		}
		r.startSkin(id)
		return growing
	}
	return done
}

func (r *run) startSkin(seed fault.CellID) {
	r.skin = fault.NewSkin(fault.SkinID(len(r.skins)))
	r.growQ.reset()
	r.boundQ.reset()

	if r.regrower == nil {
		r.cells = r.all
	} else {
		// The skin grid starts with the seed and its local candidates and
		// is extended by recovery.
		r.cells = grid.NewCellGrid(r.pool, r.n1, r.n2, r.n3)
		res := r.attempt(seed, r.regrower.Attempt)
		r.cells.Set(res.Cands)
		if x, cand, ok := r.regrower.Target(seed, res); ok {
			if cand != fault.NoCell {
				// A seed off the ridge hands over to the nearest
				// re-detected cell and is retired.
				r.pool.Cell(seed).Used = true
				seed = cand
			} else {
				r.snapTo(seed, x, fault.NoCell)
			}
		}
		r.cells.SetCell(seed)
	}
	r.growQ.push(seed, r.pool.Cell(seed).Fl)
}

// attempt runs one regrower search and counts the cells it creates.
func (r *run) attempt(id fault.CellID, search func(fault.CellID) regrow.Result) regrow.Result {
	before := r.regrower.Created()
	res := search(id)
	r.stats.Redetected += r.regrower.Created() - before
	return res
}

// growStep pops one cell, links it to its nabors and claims it.
func (r *run) growStep() state {
	id, ok := r.growQ.pop()
	if !ok {
		if r.boundQ.len() > 0 {
			return recovering
		}
		return skinComplete
	}
	if r.pool.Cell(id).Used {
		return growing
	}

	for _, d := range fault.Directions {
		if r.pool.Cell(id).Nabor(d) != fault.NoCell {
			continue
		}
		nid := r.cells.Find(id, d)
		if !r.linkable(id, d, nid) {
			continue
		}
		r.pool.Link(id, d, nid)
		r.growQ.push(nid, r.pool.Cell(nid).Fl)
	}

	c := r.pool.Cell(id)
	if r.regrower != nil && !c.InSkin() && c.MissingNabor() && c.Interior(r.n1, r.n2, r.n3) {
		r.boundQ.push(id, c.Fl)
		r.stats.Boundary++
	}
	c.Used = true
	if !c.InSkin() {
		r.skin.Add(r.pool, id)
	}
	return growing
}

// linkable reports whether nid may become the nabor of id in direction d:
// it must be free, find id again in the opposite direction and pass the
// nabor policy.
func (r *run) linkable(id fault.CellID, d fault.Direction, nid fault.CellID) bool {
	if nid == fault.NoCell || nid == id {
		return false
	}
	n := r.pool.Cell(nid)
	if n.InSkin() || n.Used || n.Nabor(d.Opposite()) != fault.NoCell {
		return false
	}
	if r.cells.Find(nid, d.Opposite()) != id {
		return false
	}
	return r.policy.Admissible(r.pool.Cell(id), n)
}

// recoverStep tries one boundary cell. On success the cell is released and
// queued again so growth resumes from it.
func (r *run) recoverStep() state {
	id, ok := r.boundQ.pop()
	if !ok {
		return skinComplete
	}
	r.stats.Recoveries++

	res := r.attempt(id, r.regrower.Detect)
	if !res.OK() {
		monitoring.Recoveries.WithLabelValues("stalled").Inc()
		return recovering
	}
	r.stats.Recovered++
	monitoring.Recoveries.WithLabelValues("resumed").Inc()

	cands := res.Cands
	if x, cand, ok := r.regrower.Target(id, res); ok && r.snapTo(id, x, cand) && cand != fault.NoCell {
		cands = without(cands, cand)
	}
	local := grid.NewCellGrid(r.pool, r.n1, r.n2, r.n3)
	local.Set(cands)
	local.SetCell(id)

	c := r.pool.Cell(id)
	for _, d := range fault.Directions {
		if c.Nabor(d) != fault.NoCell {
			continue
		}
		nid := local.Find(id, d)
		if nid == fault.NoCell || !r.policy.Admissible(c, r.pool.Cell(nid)) {
			continue
		}
		n := r.pool.Cell(nid)
		if r.cells.Get(n.I1, n.I2, n.I3) == fault.NoCell {
			r.cells.SetCell(nid)
		}
	}

	c.Used = false
	r.growQ.push(id, c.Fl)
	return growing
}

// snapTo moves id to x unless a link of id would stop being admissible or
// the skin grid holds another cell at the voxel of x. absorb is the
// candidate whose position id takes, or NoCell; it is retired on success.
func (r *run) snapTo(id fault.CellID, x r3.Vec, absorb fault.CellID) bool {
	if !r.snapKeepsLinks(id, x) {
		return false
	}
	occ := r.cells.Get(int(math.Round(x.X)), int(math.Round(x.Y)), int(math.Round(x.Z)))
	if occ != fault.NoCell && occ != id && occ != absorb {
		return false
	}
	if absorb != fault.NoCell {
		r.cells.Remove(absorb)
		r.pool.Cell(absorb).Used = true
	}
	r.cells.Move(id, x)
	return true
}

// snapKeepsLinks reports whether moving id to x keeps every existing link
// admissible.
func (r *run) snapKeepsLinks(id fault.CellID, x r3.Vec) bool {
	moved := *r.pool.Cell(id)
	moved.X = x
	for _, d := range fault.Directions {
		nid := moved.Nabor(d)
		if nid == fault.NoCell {
			continue
		}
		if !r.policy.Admissible(&moved, r.pool.Cell(nid)) {
			return false
		}
	}
	return true
}

func without(ids []fault.CellID, drop fault.CellID) []fault.CellID {
	out := make([]fault.CellID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func (r *run) completeSkin() state {
	s := r.skin
	r.skins = append(r.skins, s)
	r.stats.SkinsGrown++
	monitoring.SkinsGrown.Inc()
	if s.Size() > 0 {
		seed := r.pool.Cell(s.Cells[0])
		monitoring.Logf("skin %d: %d cells, seed fl=%.3f at (%d,%d,%d)",
			s.ID, s.Size(), seed.Fl, seed.I1, seed.I2, seed.I3)
	}
	r.suppress(s)
	r.skin = nil
	return selectingSeed
}

// suppress retires unclaimed cells near s whose strike is close to that of
// the nearby skin cell, so parallel duplicate ridges do not seed new skins.
func (r *run) suppress(s *fault.Skin) {
	if r.kd == nil {
		return
	}
	for _, id := range s.Cells {
		c := r.pool.Cell(id)
		for _, nid := range r.kd.FindAround(c.X, r.cfg.SuppressRadius) {
			n := r.pool.Cell(nid)
			if n.Used || n.InSkin() {
				continue
			}
			if fault.StrikeDelta(c.Fp, n.Fp) < r.cfg.SuppressStrike {
				n.Used = true
				r.stats.Suppressed++
			}
		}
	}
}

// postFilter dissolves undersized skins and renumbers the rest densely.
func (r *run) postFilter() {
	kept := r.skins[:0]
	for _, s := range r.skins {
		if s.Size() < r.cfg.MinSkinSize {
			s.Dissolve(r.pool)
			continue
		}
		s.Renumber(r.pool, fault.SkinID(len(kept)))
		kept = append(kept, s)
		r.stats.CellsInSkins += s.Size()
	}
	r.skins = kept
	r.stats.SkinsRetained = len(kept)
}
