// Package rotation owns the fair-rotation walk over the candidate pool and
// the persisted state record (cursor, bounded history, last applied item).
// The walk is deterministic: attempts start at the cursor and the cursor
// advances by attempts actually made, so every candidate gets its turn.
package rotation
