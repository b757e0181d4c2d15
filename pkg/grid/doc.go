// Package grid defines the shared data containers of the datalink system.
//
// This package contains:
//   - Table: an ordered, column-typed, copy-on-access tabular container
//   - Record: a flat string-keyed container holding scalars and/or Tables
//   - Kind: the closed set of column value kinds
//
// Both containers are value-like: every read accessor returns an independent
// deep copy and every container-valued insert stores a clone, so no caller
// can reach internal state through a returned reference. They are designed
// for a single logical owner at a time; hand-off between owners goes through
// Clone, never through shared references.
//
// The Golden Rule: pkg/grid imports ONLY pkg/deepcopy and stdlib.
// All other packages depend on grid, not the reverse.
package grid
