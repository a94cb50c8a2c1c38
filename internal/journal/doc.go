// Package journal records one row per engine invocation in a local SQLite
// database. It backs the history and status commands; the rotation engine
// never reads it, so a lost or corrupted journal costs diagnostics only.
package journal
