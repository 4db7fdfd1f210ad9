// Package mcp implements the Model Context Protocol (MCP) server for the
// code graph.
//
// The server exposes three tools to AI coding assistants over stdio:
//   - ingest_module: Ingest a Go repository into the graph and embed its code
//   - query_codebase: Ask a natural-language question over the ingested code
//   - graph_status: Report node and chunk counts for one module
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport; stdout is reserved
// for protocol messages, so all logging goes to stderr.
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: Ingestion failed
//   - -32002: Query failed
package mcp
