// Package ingest turns a parsed repository into graph nodes, relationships,
// and embedded chunks. The pipeline orders the writes so relationship merges
// always find their endpoints, and the embedding cache keeps re-ingestion of
// unchanged code from paying for embeddings twice.
package ingest
