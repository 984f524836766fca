// Package fault owns the fault skin data model.
//
// Responsibilities: oriented ridge cells, the cell arena (Pool) with
// handle-based nabor links, skins as sets of cell handles, and the
// strike/dip geometry shared by detection, growth and export.
// Key types: Cell, Pool, Skin, Direction.
//
// Dependency rule: fault may depend on internal/volume, but never on the
// ridge, grid, nabor, regrow or grow subpackages.
// No SQL/database code is allowed in this package.
package fault
