package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeIngestFailed  = -32001 // Ingestion could not complete
	ErrorCodeQueryFailed   = -32002 // Retrieval could not complete
)

// handleIngestModule handles the ingest_module tool invocation
func (s *Server) handleIngestModule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repoPath, ok := args["repo_path"].(string)
	if !ok || repoPath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "repo_path parameter is required", map[string]interface{}{
			"param":  "repo_path",
			"reason": "missing or empty",
		})
	}
	moduleName, ok := args["module_name"].(string)
	if !ok || moduleName == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "module_name parameter is required", map[string]interface{}{
			"param":  "module_name",
			"reason": "missing or empty",
		})
	}

	summary, err := s.ingest.Ingest(ctx, types.IngestRequest{
		RepoPath:   repoPath,
		ModuleName: moduleName,
		Options: types.IngestOptions{
			IncludeTests: getBoolDefault(args, "include_tests", false),
			Overlap:      -1,
			Embed:        getBoolDefault(args, "embed", true),
		},
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeIngestFailed, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"module":        summary.ModuleName,
		"types":         summary.Types,
		"methods":       summary.Methods,
		"endpoints":     summary.Endpoints,
		"chunks":        summary.Chunks,
		"relationships": summary.Relationships,
		"embedded":      summary.Embedded,
		"reused":        summary.Reused,
		"failed":        summary.Failed,
		"duration_ms":   summary.DurationMS,
	}
	if failures := failedOutcomes(summary.Outcomes); len(failures) > 0 {
		response["failures"] = failures
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleQueryCodebase handles the query_codebase tool invocation
func (s *Server) handleQueryCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "question parameter is required", map[string]interface{}{
			"param":  "question",
			"reason": "missing or empty",
		})
	}

	result, err := s.query.Query(ctx, types.QueryRequest{
		Question:       question,
		ModuleFilter:   getStringDefault(args, "module", ""),
		TopK:           getIntDefault(args, "top_k", 0),
		Hops:           getIntDefault(args, "hops", -1),
		GenerateAnswer: getBoolDefault(args, "generate_answer", true),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeQueryFailed, "query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"answer":        result.Answer,
		"hits":          len(result.Hits),
		"nodes":         len(result.Subgraph.Nodes),
		"relationships": len(result.Subgraph.Relationships),
		"results":       result,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGraphStatus handles the graph_status tool invocation
func (s *Server) handleGraphStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	module, ok := args["module"].(string)
	if !ok || module == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "module parameter is required", map[string]interface{}{
			"param":  "module",
			"reason": "missing or empty",
		})
	}

	stats, err := s.stats.Stats(ctx, module)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "status lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"module":          module,
		"types":           stats.Types,
		"methods":         stats.Methods,
		"endpoints":       stats.Endpoints,
		"chunks":          stats.Chunks,
		"embedded_chunks": stats.EmbeddedChunks,
	})), nil
}

func failedOutcomes(outcomes []types.ChunkOutcome) []map[string]interface{} {
	var failures []map[string]interface{}
	for _, o := range outcomes {
		if o.Status != types.ChunkFailed {
			continue
		}
		failures = append(failures, map[string]interface{}{
			"chunk_id": o.ChunkID,
			"error":    o.Err,
		})
		if len(failures) == 5 {
			break
		}
	}
	return failures
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// newMCPError creates an MCP protocol error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}
