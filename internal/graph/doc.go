// Package graph is the write and traversal layer for the labelled property
// graph. All writes are batch MERGE statements keyed on natural keys, so any
// batch can be replayed without creating duplicates. Reads cover chunk state
// lookup, k-hop neighborhood expansion, shortest type paths, and per-module
// statistics.
package graph
