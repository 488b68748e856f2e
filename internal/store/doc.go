// Package store holds the normalized, immutable state of a model.
//
// A Store maps table names to Tables. A Table is an ordered list of record
// ids plus an id -> Record map; the id list never holds duplicates and is
// exactly the key set of the map.
//
// Nothing in this package mutates a Table or Store after construction.
// Changes go through Edit (for tables) and WithTable (for stores), which
// return new values and share everything they did not touch. Callers detect
// "nothing changed" by pointer comparison.
//
// # Wire shape
//
//	{ "<table>": { "ids": [...], "entities": { "<id>": {"id", "label", "data"} } } }
//
// References inside data are written as {"table", "id"}. Encoding is
// canonical JSON (MarshalJSON) or msgpack (MarshalMsgpack).
package store
