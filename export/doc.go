// Package export implements the writer-dispatch-by-format side of the
// `.export` dot command: given a prepared statement that has not yet been
// stepped and a sink, it drains the cursor and writes CSV, TSV, JSON,
// NDJSON, a single raw value, or an HTML table for the clipboard.
//
// CSV/TSV are written with encoding/csv rather than a third-party CSV
// library: none of the example repos pulled in a CSV dependency (the
// teacher's CSV-adjacent surface is all SQL-shaped), and the standard
// library's writer already covers quoting/escaping correctly.
package export
