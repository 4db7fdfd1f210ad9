// Package vector is the vector-index collaborator: it stores chunk vectors
// with typed payloads and answers top-K similarity searches.
//
// The index is a derived, rebuildable structure; the graph store remains
// authoritative for chunk state. Payloads cross the boundary only as
// ChunkPayload, with the conversion to the index's generic key-value form
// enumerated in one place.
package vector
