package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestModuleTool returns the tool definition for ingest_module
func ingestModuleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_module",
		Description: "Ingest a Go repository into the code graph and embed its method bodies",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repo_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"module_name": map[string]interface{}{
					"type":        "string",
					"description": "Logical module name the ingested entities are keyed under",
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, ingest *_test.go files",
					"default":     false,
				},
				"embed": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, store chunks without embedding vectors",
					"default":     true,
				},
			},
			Required: []string{"repo_path", "module_name"},
		},
	}
}

// queryCodebaseTool returns the tool definition for query_codebase
func queryCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_codebase",
		Description: "Answer a natural-language question over ingested code using vector search plus graph expansion",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language question about the code",
				},
				"module": map[string]interface{}{
					"type":        "string",
					"description": "Restrict matches to one module",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of vector-search matches to retrieve (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"hops": map[string]interface{}{
					"type":        "integer",
					"description": "Graph expansion depth from the matched chunks (0-5)",
					"default":     2,
					"minimum":     0,
					"maximum":     5,
				},
				"generate_answer": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, synthesize a prose answer from the retrieved context",
					"default":     true,
				},
			},
			Required: []string{"question"},
		},
	}
}

// graphStatusTool returns the tool definition for graph_status
func graphStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "graph_status",
		Description: "Report node and chunk counts for one ingested module",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"module": map[string]interface{}{
					"type":        "string",
					"description": "Module name to report on",
				},
			},
			Required: []string{"module"},
		},
	}
}
