// Package ir provides the value model shared by every relatix engine.
//
// Record data is an arbitrarily nested tree of Values. Value is a sealed
// interface: only the types in this package implement it, and every traversal
// (materialization, merge, resolution, encoding) switches exhaustively over
// them. Raw Go data enters the model once, through FromGo or the JSON
// decoders, where structural detection decides which variant a value is.
//
// Key constraints:
//   - Values are immutable once built; operations return new trees
//   - There is exactly one runtime reference kind (Ref); same-table-ness is a
//     property of where a Ref is found, never of the Ref itself
//   - SymbolicRef only appears in population data and never in a Store
package ir
