package fault

import "gonum.org/v1/gonum/spatial/r3"

// Pool is the arena that owns every cell of a run. Cells are addressed by
// CellID and never move, so handles stay valid while the pool grows.
//
// Cells added before Freeze are the detected cells; their positions are
// remembered so Reset can undo everything a growth run did, including cells
// appended by local re-detection.
type Pool struct {
	cells  []Cell
	origin []r3.Vec
	frozen bool
}

// NewPool creates an empty pool with room for capacity cells.
func NewPool(capacity int) *Pool {
	return &Pool{
		cells:  make([]Cell, 0, capacity),
		origin: make([]r3.Vec, 0, capacity),
	}
}

// PoolFromCells creates a frozen pool holding copies of cells.
func PoolFromCells(cells []Cell) *Pool {
	p := NewPool(len(cells))
	for _, c := range cells {
		p.Add(c)
	}
	p.Freeze()
	return p
}

// Add appends a cell and returns its handle.
func (p *Pool) Add(c Cell) CellID {
	id := CellID(len(p.cells))
	p.cells = append(p.cells, c)
	if !p.frozen {
		p.origin = append(p.origin, c.X)
	}
	return id
}

// Freeze marks the current cells as the detected set restored by Reset.
func (p *Pool) Freeze() { p.frozen = true }

// Detected returns the number of cells present when the pool was frozen.
func (p *Pool) Detected() int { return len(p.origin) }

// Len returns the number of cells, including any appended during growth.
func (p *Pool) Len() int { return len(p.cells) }

// Cell returns the cell for id. The pointer is invalidated by Add.
func (p *Pool) Cell(id CellID) *Cell {
	if id == NoCell {
		return nil
	}
	return &p.cells[id]
}

// Valid reports whether id addresses a cell in the pool.
func (p *Pool) Valid(id CellID) bool {
	return id >= 0 && int(id) < len(p.cells)
}

// IDs returns the handles of all cells in pool order.
func (p *Pool) IDs() []CellID {
	ids := make([]CellID, len(p.cells))
	for i := range ids {
		ids[i] = CellID(i)
	}
	return ids
}

// Link makes b the nabor of a in direction d and a the nabor of b in the
// opposite direction. Both sides are always written together.
func (p *Pool) Link(a CellID, d Direction, b CellID) {
	p.cells[a].Nabors[d] = b
	p.cells[b].Nabors[d.Opposite()] = a
}

// Unlink removes the link of a in direction d and its mirror.
func (p *Pool) Unlink(a CellID, d Direction) {
	b := p.cells[a].Nabors[d]
	p.cells[a].Nabors[d] = NoCell
	if b != NoCell && p.cells[b].Nabors[d.Opposite()] == a {
		p.cells[b].Nabors[d.Opposite()] = NoCell
	}
}

// Release returns a cell to the unclaimed state: no skin, no links.
func (p *Pool) Release(id CellID) {
	for _, d := range Directions {
		p.Unlink(id, d)
	}
	c := &p.cells[id]
	c.Skin = NoSkin
	c.Used = false
}

// Move places a cell at x and recomputes its voxel index.
func (p *Pool) Move(id CellID, x r3.Vec) {
	p.cells[id].setPosition(x)
}

// Reset drops cells appended after Freeze, restores detected positions and
// clears every link, skin membership and claim.
func (p *Pool) Reset() {
	p.cells = p.cells[:len(p.origin)]
	for i := range p.cells {
		c := &p.cells[i]
		c.setPosition(p.origin[i])
		c.Nabors = [4]CellID{NoCell, NoCell, NoCell, NoCell}
		c.Skin = NoSkin
		c.Used = false
	}
}
