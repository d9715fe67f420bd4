// Package catalog reads and writes the chore catalog.
//
// The catalog is a CSV file with two free-form preamble lines (a legend kept
// for the humans editing the sheet) followed by a header row and one row per
// task. The preamble is preserved verbatim on every rewrite and never
// interpreted.
package catalog
