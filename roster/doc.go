// Package roster ingests raw applicant rosters: it parses published HTML
// roster pages into application records and program capacity data, fetches
// pages over HTTP with an optional Redis page cache, and deduplicates
// same-candidate rows before anything reaches the engine.
//
// The engine does not trust upstream formatting (candidate identifiers are
// re-normalized there), so this package hands over raw strings plus parsed
// numerics and lets the engine own identity semantics.
package roster
