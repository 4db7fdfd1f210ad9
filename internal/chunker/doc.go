// Package chunker windows rendered code text into fixed-size overlapping
// chunks for embedding.
//
// Identity is content-derived: each chunk id is the SHA-256 of
// (module | owner | signature | window index | window text hash). Chunking
// the same method text twice therefore yields identical ids, and any change
// to the text or its position yields new ones — the property the embedding
// reuse cache depends on.
//
// The window advances by chunkSize-overlap characters; overlap is clamped
// below chunkSize so the walk always terminates, and adjacent windows cover
// the input without gaps.
package chunker
