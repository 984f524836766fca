// Package sqlite persists growth runs, their skins and skin cells in
// SQLite.
//
// Cells are stored per skin with nabor links as indices local to the skin,
// so a skin can be reloaded into its own pool without the rest of the run.
package sqlite
