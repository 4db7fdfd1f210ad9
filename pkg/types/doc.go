// Package types provides shared type definitions for the codegraph service.
//
// It defines the domain records that flow between the parser, the ingestion
// pipeline, the graph store and the retriever: parsed source structure
// (ParsedModule and its definition records), embeddable chunks (ChunkRecord),
// graph node and relationship records keyed by natural keys, and the result
// types returned by queries.
//
// # Natural keys
//
// Graph entities carry no synthetic identifiers. Each node record is
// identified by a natural key:
//
//	Module   -> name
//	Type     -> (module, fqName)
//	Method   -> (module, fqName, signature)
//	Endpoint -> (module, httpMethod, path)
//	Chunk    -> id (content-derived hash)
//
// Relationship records are keyed by the natural keys of both endpoints plus a
// discriminator where one exists (for example the dependency kind). Upserts
// merge on these keys and never duplicate.
//
// # Chunks
//
// ChunkRecord is the unit of embedding and retrieval. Its ID is derived from
// the owning method's identity, the window sequence index and the window text
// hash, so re-ingesting unchanged code converges on the same records.
package types
