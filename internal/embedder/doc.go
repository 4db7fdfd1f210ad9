// Package embedder generates embedding vectors for code chunks and query
// text.
//
// Three providers implement the Embedder interface: OpenAI and Ollama over
// HTTP (both with exponential-backoff retry), and a deterministic local
// hash-based provider for offline runs and tests. An optional in-process LRU
// cache memoizes vectors by content hash within one process; the durable
// reuse decision across ingestion runs belongs to the ingestion cache, which
// reads prior state from the graph store.
//
// The provider's Dimension must match the vector index's configured
// dimension; configuration validation enforces this at startup.
package embedder
