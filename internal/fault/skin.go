package fault

// Skin is a connected set of linked cells representing one fault surface.
// A skin holds cell handles; the Pool owns the cells.
type Skin struct {
	ID    SkinID
	Cells []CellID
}

// NewSkin returns an empty skin with the given handle.
func NewSkin(id SkinID) *Skin {
	return &Skin{ID: id}
}

// Size returns the number of member cells.
func (s *Skin) Size() int { return len(s.Cells) }

// Add claims the cell for this skin.
func (s *Skin) Add(p *Pool, id CellID) {
	p.Cell(id).Skin = s.ID
	s.Cells = append(s.Cells, id)
}

// Renumber changes the skin handle and updates every member cell.
func (s *Skin) Renumber(p *Pool, id SkinID) {
	s.ID = id
	for _, c := range s.Cells {
		p.Cell(c).Skin = id
	}
}

// Dissolve releases every member cell back to the unclaimed pool and
// empties the skin.
func (s *Skin) Dissolve(p *Pool) {
	for _, c := range s.Cells {
		p.Release(c)
	}
	s.Cells = nil
}

// SkinCells returns the handles of all cells in the given skins.
func SkinCells(skins []*Skin) []CellID {
	n := 0
	for _, s := range skins {
		n += s.Size()
	}
	ids := make([]CellID, 0, n)
	for _, s := range skins {
		ids = append(ids, s.Cells...)
	}
	return ids
}
