// Package query implements hybrid retrieval: vector similarity over chunk
// embeddings fused with k-hop expansion of the code graph, plus optional
// answer synthesis through a chat model.
package query
